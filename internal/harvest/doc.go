// Package harvest runs the recorder's flush cycle: evaluate, wait for
// repairs, then snapshot every sheet into a payload that can be shipped.
package harvest
