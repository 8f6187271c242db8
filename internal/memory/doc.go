// Package memory implements the durable knowledge store backing Nexus.
//
// The store keeps immutable text records with metadata in a chromem-go
// persistent collection (base directory + collection name), and retrieves
// the nearest records to a query under cosine similarity. Records are only
// ever inserted or queried; the single destructive operation is a
// whole-store Reset used for re-initialization.
//
// Ingestion converts raw uploads into records: plain-text and PDF files are
// extracted, normalized, split into fixed-size overlapping chunks and
// written in one batch, while manually entered notes are stored as a single
// record regardless of length.
//
// The chunking policy is a pure sliding window: chunk i covers
// [i*stride, i*stride+size) of the text, stride = size - overlap, with the
// last chunk truncated to the remaining length. See Chunk.
package memory
