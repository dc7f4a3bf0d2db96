// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pathindex builds a name to location index of every file reachable
// from a search path.
//
// Each directory of the search path is walked recursively, in order, following
// symbolic links. Entries that cannot be read are skipped rather than failing the
// build; they are reported by Index.Skipped.
//
// When two directories hold a file with the same name, the ShadowPolicy decides
// which one the index keeps. LastWins, the default, lets later entries overwrite
// earlier ones. FirstWins keeps the first entry found, like a shell does.
package pathindex
