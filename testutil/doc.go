// Copyright (c) chatIAS Authors.
// Licensed under the MIT License.

/*
Package testutil provides shared helpers for the engine's tests.

Tests should prefer these helpers over re-implementing similar
infrastructure per package:

  - TestContext / TestContextWithTimeout — contexts with automatic cleanup
  - AssertEventuallyTrue — polling assertion for asynchronous conditions

The testutil/mocks subpackage provides scripted tool and provider
collaborators with builder-style configuration and error injection.
*/
package testutil
