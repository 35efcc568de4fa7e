// Command dnnfold predicts RNA secondary structures with the Turner nearest
// neighbor model or with neural network scored folding models.
//
// Usage:
//
//	dnnfold predict INPUT [flags]
//	dnnfold eval INPUT [--counts FILE] [flags]
//	dnnfold dump-param FILE [flags]
//
// INPUT is a FASTA file or a file listing one BPSEQ file per line. Structures
// are printed in dot-bracket notation unless --bpseq names a directory, or
// "stdout", for BPSEQ output. With --result the accuracy against the
// reference structures of a BPSEQ list is written as CSV, or to a SQLite
// database for .db, .sqlite and .sqlite3 files.
package main
