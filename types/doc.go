// Copyright (c) chatIAS Authors.
// Licensed under the MIT License.

/*
Package types provides the shared type contracts of the orchestration engine.

types is the lowest-level public package. It depends on no other package in
the module and supplies the contracts consumed by the sequence engine and by
collaborator implementations:

  - StepResult        — uniform result shape for every collaborator call
  - StepExecutor      — one callable tool/provider unit (action + params)
  - ToolRegistry      — tool identifier lookup
  - ProviderRegistry  — provider (MCP) identifier lookup
  - ToolMap / ProviderMap — map-backed registry implementations
  - Error / ErrorCode — structured error taxonomy with cause chaining
  - Context helpers   — WithRequestID / WithSequenceID propagation
*/
package types
