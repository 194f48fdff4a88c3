// Package errs holds the error taxonomy shared by the download pipeline.
// Every failure that leaves a job carries one kind sentinel, which callers
// test with errors.Is.
package errs
