// Package utility provides the contexts that feed and drain a pipeline:
// Generator sends values, Checker compares what arrives with what is
// expected, Printer logs what arrives, and Collector keeps it.
package utility
