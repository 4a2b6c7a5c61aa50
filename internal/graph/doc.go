// Package graph implements the construction engine: it walks a call-node
// tree from a declared result and produces a canonical, deduplicated
// workflow.
//
// The walk is depth-first, first-argument-first, and single-threaded. Each
// (sub)workflow scope keeps its own fingerprint table, so structurally
// identical calls merge within a scope and never across subworkflow
// boundaries. Only nodes reachable from the declared result are visited;
// dead branches of nested compositions therefore never materialize as steps.
package graph
