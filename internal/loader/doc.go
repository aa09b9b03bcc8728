// Package loader builds a cssom.Document from an HTML page, approximating
// which style sheets a browser would expose through document.styleSheets
// and which of them it would refuse to let scripts read.
package loader
