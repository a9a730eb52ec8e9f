// Package pkg provides the core libraries for the pystyle crawler.
//
// # Overview
//
// Pystyle surveys coding conventions across the Python open source
// ecosystem. The pkg directory is organized along the data flow:
//
//  1. [pypi], [crawl] - Discovery (PyPI JSON API, RSS feeds, clone store)
//  2. [gitexec] - Git subprocess wrapper with scoped checkouts
//  3. [style] - The extractor battery computing per-project records
//  4. [store] - JSON snapshots, CSV tables, and the Mongo sink
//  5. [cache], [httputil], [batch], [observability] - Shared plumbing
//
// # Architecture
//
// The typical data flow through pystyle:
//
//	PyPI feeds / project JSON
//	         ↓
//	crawl: resolve GitHub URL, clone under <store>/<owner>/<name>
//	         ↓
//	gitexec: pick a commit, scoped checkout
//	         ↓
//	style: extractor battery → flat record
//	         ↓
//	store: style.json / CSV / MongoDB
package pkg
