package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/vimeh/gridcore-sub002/calc"
	"github.com/vimeh/gridcore-sub002/formula"
	"github.com/vimeh/gridcore-sub002/grid"
	"github.com/vimeh/gridcore-sub002/pivot"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, text string) {
	writeJSON(w, code, map[string]string{"error": text})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type cellRequest struct {
	Cell  string `json:"cell"`
	Value string `json:"value"`
}

func handleCells(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		getCell(w, r)
	case http.MethodPost:
		postCell(w, r)
	case http.MethodDelete:
		deleteCell(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func getCell(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("cell")
	gridMu.Lock()
	defer gridMu.Unlock()
	if name == "" {
		writeJSON(w, http.StatusOK, gridState())
		return
	}
	coord, err := grid.ParseCoordinate(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cell, ok := store.Get(coord)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no cell at %s", coord))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cell":    coord.String(),
		"data":    cell,
		"display": cell.Display(),
	})
}

func postCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	coord, err := grid.ParseCoordinate(req.Cell)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gridMu.Lock()
	defer gridMu.Unlock()
	cells, status, err := commitCell(coord, req.Value)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	observeGridSize()
	writeJSON(w, http.StatusOK, map[string]any{"cells": cells})
}

func deleteCell(w http.ResponseWriter, r *http.Request) {
	coord, err := grid.ParseCoordinate(r.FormValue("cell"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gridMu.Lock()
	defer gridMu.Unlock()
	key := coord.String()
	before, ok := store.Get(coord)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no cell at %s", coord))
		return
	}
	beforeRaw := before.Raw
	store.Delete(coord)
	history.Record(grid.Change{Coord: coord, Before: beforeRaw, BeforeSet: true})
	graph.ClearDependenciesOf(key)
	cells, err := calculator.RecalculateDependents(coord)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	observeGridSize()
	writeJSON(w, http.StatusOK, map[string]any{"deleted": key, "cells": cells})
}

// commitCell validates, stores, and recalculates one cell, recording the
// change for undo. A formula is parsed and probed against the dependency
// graph before anything mutates, so a rejected write leaves no trace.
// The caller must hold gridMu.
func commitCell(coord grid.Coordinate, raw string) (map[string]*grid.Cell, int, error) {
	key := coord.String()
	var deps map[string]grid.Coordinate
	if strings.HasPrefix(raw, "=") {
		parsed, err := formula.ParseWithLimit(raw, cfg.Engine.MaxDepth)
		if err != nil {
			calculationsTotal.WithLabelValues("rejected").Inc()
			return nil, http.StatusBadRequest, fmt.Errorf("Parse error: %w", err)
		}
		for dep := range parsed.Deps {
			if graph.HasCycleIfAdded(key, dep) {
				calculationsTotal.WithLabelValues("rejected").Inc()
				return nil, http.StatusConflict, fmt.Errorf("%w at %s", calc.ErrCircular, key)
			}
		}
		deps = parsed.Deps
	}

	beforeRaw, beforeSet := "", false
	if before, ok := store.Get(coord); ok {
		beforeRaw, beforeSet = before.Raw, true
	}
	if _, err := store.Set(coord, raw); err != nil {
		return nil, http.StatusBadRequest, err
	}
	history.Record(grid.Change{
		Coord:     coord,
		Before:    beforeRaw,
		BeforeSet: beforeSet,
		After:     raw,
		AfterSet:  true,
	})
	graph.ClearDependenciesOf(key)
	for dep := range deps {
		graph.AddEdge(key, dep)
	}
	start := time.Now()
	cells, err := calculator.RecalculateDependents(coord)
	calculationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return cells, http.StatusOK, nil
}

func handleGrid(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		gridMu.Lock()
		defer gridMu.Unlock()
		writeJSON(w, http.StatusOK, gridState())
	case http.MethodDelete:
		gridMu.Lock()
		defer gridMu.Unlock()
		resetGrid()
		observeGridSize()
		writeJSON(w, http.StatusOK, gridState())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// gridState snapshots the whole sheet. The caller must hold gridMu.
func gridState() map[string]any {
	return map[string]any{"cells": store.All(), "count": store.Count()}
}

// resetGrid wipes every piece of sheet state. The caller must hold gridMu.
func resetGrid() {
	store.Clear()
	graph.ClearAll()
	calculator.ClearCache()
	history.Reset()
}

type loadRequest struct {
	Cells map[string]string `json:"cells"`
}

// handleLoad replaces the whole sheet with the posted cells, then calculates
// everything. A parse failure or a cycle in the posted data rejects the load
// and leaves an empty sheet rather than a half-calculated one.
func handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req loadRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	coords := make(map[string]grid.Coordinate, len(req.Cells))
	for name, raw := range req.Cells {
		coord, err := grid.ParseCoordinate(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.HasPrefix(raw, "=") {
			if _, err := formula.ParseWithLimit(raw, cfg.Engine.MaxDepth); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: Parse error: %s", coord, err))
				return
			}
		}
		coords[name] = coord
	}

	gridMu.Lock()
	defer gridMu.Unlock()
	resetGrid()
	for name, raw := range req.Cells {
		if _, err := store.Set(coords[name], raw); err != nil {
			resetGrid()
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", coords[name], err))
			return
		}
	}
	calc.BuildGraph(store, graph)
	cells := make(map[string]*grid.Cell, store.Count())
	for _, key := range store.Keys() {
		coord, err := grid.ParseCoordinate(key)
		check(err)
		cell, err := calculator.Calculate(coord)
		if err != nil {
			resetGrid()
			code := http.StatusBadRequest
			if errors.Is(err, calc.ErrCircular) {
				code = http.StatusConflict
			}
			writeError(w, code, fmt.Sprintf("%s: %s", key, err))
			return
		}
		cells[key] = cell
	}
	observeGridSize()
	writeJSON(w, http.StatusOK, map[string]any{"cells": cells, "count": len(cells)})
}

type evaluateRequest struct {
	Formula string `json:"formula"`
}

func handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req evaluateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	gridMu.Lock()
	defer gridMu.Unlock()
	v, err := calculator.Evaluate(req.Formula)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, calc.ErrCircular) {
			code = http.StatusConflict
		}
		writeError(w, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": v, "display": v.String()})
}

type transformRequest struct {
	Formula   string `json:"formula"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Direction string `json:"direction,omitempty"`
}

func (req *transformRequest) coords() (source, target grid.Coordinate, err error) {
	source, err = grid.ParseCoordinate(req.Source)
	if err != nil {
		return
	}
	target, err = grid.ParseCoordinate(req.Target)
	return
}

func handleTransformCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req transformRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	source, target, err := req.coords()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tr, err := formula.TransformForCopy(req.Formula, source, target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func handleTransformFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req transformRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	source, target, err := req.coords()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := formula.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tr, err := formula.TransformForFill(req.Formula, source, target, dir)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func handleTransformPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req transformRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	source, target, err := req.coords()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pv, err := formula.PreviewTransformation(req.Formula, source, target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

type fillRequest struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Direction string `json:"direction"`
}

// handleFill copies the source cell across the target range, rewriting
// formula references along the fill axis. Every written cell goes through
// the same validation and recalculation as a direct write, and each one is
// individually undoable.
func handleFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req fillRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	source, err := grid.ParseCoordinate(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	area, err := grid.ParseRange(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := formula.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gridMu.Lock()
	defer gridMu.Unlock()
	src, ok := store.Get(source)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no cell at %s", source))
		return
	}
	cells := make(map[string]*grid.Cell)
	filled := 0
	for it := area.Iter(); ; {
		coord, more := it.Next()
		if !more {
			break
		}
		if coord == source {
			continue
		}
		raw := src.Raw
		if src.HasFormula() {
			tr, err := formula.TransformForFill(src.Raw, source, coord, dir)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", coord, err))
				return
			}
			raw = tr.Formula
		}
		updated, status, err := commitCell(coord, raw)
		if err != nil {
			writeError(w, status, fmt.Sprintf("%s: %s", coord, err))
			return
		}
		for key, cell := range updated {
			cells[key] = cell
		}
		filled++
	}
	observeGridSize()
	writeJSON(w, http.StatusOK, map[string]any{"filled": filled, "cells": cells})
}

type pivotRequest struct {
	Range       string `json:"range"`
	KeyColumn   int    `json:"key_column"`
	ValueColumn int    `json:"value_column"`
	Aggregation string `json:"aggregation"`
	SortByValue bool   `json:"sort_by_value,omitempty"`
}

// handlePivot groups a block of calculated cells by one column and folds
// another column into per-group aggregates.
func handlePivot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req pivotRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	area, err := grid.ParseRange(req.Range)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Aggregation == "" {
		req.Aggregation = "sum"
	}
	agg, err := pivot.ParseAggregation(req.Aggregation)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gridMu.Lock()
	defer gridMu.Unlock()
	if _, err := calculator.CalculateRange(area); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, calc.ErrCircular) {
			code = http.StatusConflict
		}
		writeError(w, code, err.Error())
		return
	}
	table, err := pivot.Build(store, area, req.KeyColumn, req.ValueColumn, agg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SortByValue {
		table.SortByValue()
	}
	writeJSON(w, http.StatusOK, table)
}

func handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	gridMu.Lock()
	defer gridMu.Unlock()
	ch, ok := history.Undo(store)
	if !ok {
		writeError(w, http.StatusConflict, "nothing to undo")
		return
	}
	respondAfterHistory(w, ch)
}

func handleRedo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	gridMu.Lock()
	defer gridMu.Unlock()
	ch, ok := history.Redo(store)
	if !ok {
		writeError(w, http.StatusConflict, "nothing to redo")
		return
	}
	respondAfterHistory(w, ch)
}

// respondAfterHistory rebuilds the rewritten cell's dependency edges,
// recalculates downstream, and writes the outcome. Cycle failures from the
// recalculation map to 409 like everywhere else. The caller must hold
// gridMu.
func respondAfterHistory(w http.ResponseWriter, ch grid.Change) {
	key := ch.Coord.String()
	graph.ClearDependenciesOf(key)
	if cell, ok := store.Get(ch.Coord); ok && cell.HasFormula() {
		for _, dep := range calc.ScanReferences(cell.Raw) {
			graph.AddEdge(key, dep)
		}
	}
	cells, err := calculator.RecalculateDependents(ch.Coord)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, calc.ErrCircular) {
			code = http.StatusConflict
		}
		writeError(w, code, err.Error())
		return
	}
	observeGridSize()
	writeJSON(w, http.StatusOK, map[string]any{"cell": key, "cells": cells})
}
