// Package confstore owns the configuration documents the web application
// edits: three partial TOML files (ai.bak.cfg, chat.bak.cfg, other.bak.cfg)
// and the derived global file config.cfg.
//
// Documents are plain nested maps. Normalize strips empty fields before a
// document is persisted; Store.Save writes a partial file and regenerates the
// global file as the shallow, right-biased union of every partial file in
// their fixed priority order. Reads are always served from disk, nothing is
// cached, and concurrent writers are not coordinated: the last writer wins.
package confstore
