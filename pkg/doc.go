// Package pkg provides the core libraries for Planweave roadmap layout.
//
// # Overview
//
// Planweave turns nested strategic-planning documents into positioned
// timeline layouts. The pkg directory is organized into these areas:
//
//  1. [roadmap] - Document hierarchy (roadmap → strategy → program → workstream)
//  2. [plangraph] - Flattened planning graph (milestones, dependencies, edge kinds)
//  3. [layout] - Placement, timeline scale, and edge routing
//  4. [export] - Rendering documents and DOT/SVG/PNG output
//  5. [pipeline] - Orchestration (load → build → layout) with caching
//  6. [kv] - Key-value stores backing overrides and caches
//  7. [source] - Document loaders (file, HTTP, MongoDB)
//
// # Architecture
//
// The typical data flow through Planweave:
//
//	Planning Document (file/HTTP/MongoDB)
//	         ↓
//	    [roadmap] package (build the hierarchy)
//	         ↓
//	    [plangraph] package (flatten to milestones + classified edges)
//	         ↓
//	    [layout] package (tracks, placements, timeline scale, overrides)
//	         ↓
//	    [export] package (JSON/DOT/SVG/PNG output)
//
// Drag adjustments persist through [layout/state] into a [kv.Store], and
// the [pipeline] package ties everything together for both the CLI and
// the HTTP API.
package pkg
