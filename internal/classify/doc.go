// Package classify categorizes raw secondary-identifier strings into the
// Temporary, Permanent, and Invalid classes used throughout consolidation.
//
// Classification is a pure function of the identifier string and the
// configured rules. It never fails: any shape the rules do not recognize is
// Invalid.
package classify
