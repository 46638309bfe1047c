// Package logging provides leveled logging for the image browser.
//
// The level is resolved once from the DEBUG and LOG_LEVEL environment
// variables and defaults to info.
package logging
