// Package pipeline composes a docpull run out of sequential steps.
//
// A run is crawl, save, fetch: discover item and file URLs, persist the
// frontier to text files, then download the files. Each stage is a Step
// that receives the accumulated RunReport, so the CLI can compose
// crawl-only, fetch-only, or full runs from the same parts.
//
// Design decision: steps are an interface rather than function types
// because steps carry configuration state, need a Name for logging, and
// the set of steps differs per command.
//
// The fetch stage can run a bounded number of downloads concurrently
// using errgroup; the default is sequential.
package pipeline
