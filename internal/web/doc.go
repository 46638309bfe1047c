// Package web renders the HTML pages of the gallery from handlebars
// templates.
package web
