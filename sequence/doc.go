// Copyright (c) chatIAS Authors.
// Licensed under the MIT License.

/*
Package sequence implements the tool-sequence orchestration engine.

# Overview

A ToolSequence is an immutable, ordered workflow definition whose steps are
dispatched to pluggable tool and provider collaborators. The Executor runs
sequences strictly step after step, resolving ${input.*} and ${stepN.*}
parameter templates against the initial input bag and prior step results,
applying each step's failure policy, retrying stop-policy failures with
backoff, and gating every sequence behind its own circuit breaker.

# Core types

  - ToolSequence / SequenceStep — immutable workflow definitions
  - Builder / StepBuilder       — fluent definition construction
  - Store                       — definition registry keyed by id
  - CircuitBreaker / CircuitBreakerRegistry — per-sequence failure gate
    (closed / open / half-open)
  - Executor                    — orchestration core and sole entry point
  - RunReport / StepReport      — ordered per-step outcome record
  - ExecutionError              — halted run with partial report and cause

# Failure model

Step failures are routed through the step's on_error policy: continue,
log_warning, and skip proceed to the next step; fallback proceeds because
provider fallback substitution already happened during dispatch; stop halts
the run, optionally after the retry sub-procedure. Only halting failures
count against the circuit breaker — a run that completes with absorbed step
failures is a success from the breaker's point of view.
*/
package sequence
