// Package main provides the entry point for the firedocs CLI.
//
// firedocs crawls a documentation site with the Firecrawl API and writes
// every page as a Markdown file with a front matter header.
//
// Usage:
//
//	firedocs crawl https://docs.example.com
//	firedocs crawl --scope https://docs.example.com/guide https://docs.example.com/guide/intro
//
// See --help for all available options.
package main

func main() {
	Execute()
}
