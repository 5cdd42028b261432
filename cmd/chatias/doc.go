// Copyright (c) chatIAS Authors.
// Licensed under the MIT License.

/*
Package main provides the chatias command line tool.

cmd/chatias works with tool sequence definition files:

	chatias validate <path>   validate a YAML file or directory of files
	chatias list <path>       list the sequences a file or directory defines
	chatias version           print build information

validate and list accept either a single .yaml/.yml file or a directory,
in which case every definition file in it is loaded in lexical order.
Version, BuildTime and GitCommit are injected at build time via ldflags.
*/
package main
