// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package recipe loads YAML run plans and turns them into executable
// runners. A plan names its groups, pipelines and command stages; the
// package validates the structure, resolves the process environment from
// dotenv files and inline variables, and fetches plan files from local or
// remote sources.
package recipe
