// Package runtime is an in-process session runtime.
//
// Workspace holds named variables, attached packages and a graphics
// surface and knows how to serialize its global environment. Host runs a
// workspace in the current process and reports serialization events and
// warnings to a writer. Together they back the sessiond command.
package runtime
