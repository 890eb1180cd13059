// Package ui is the terminal interaction surface of firedocs.
//
// Prompter collects missing input (URLs, output folder, API key) and
// satisfies crawler.CredentialPrompter. Progress shows a spinner on a
// terminal and plain lines otherwise; it satisfies crawler.ProgressReporter.
// Notifier prints colored one-line messages.
package ui
