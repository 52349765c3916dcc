// Package graph builds a toy two-layer conv/fc/softmax operator graph and
// drives it through tensormem's two lifetime manager variants, mirroring
// the two-MemoryManagerOnDemand pattern of the ARM Compute Library's
// examples/neon_cnn.cpp: mmLayers plans each operator's private scratch
// tensor, mmTransitions plans the tensors handed from one operator to the
// next.
package graph

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/cogpy/tensormem/core/tensormem"
)

// operator is one stage of the toy graph: conv, fc, or softmax. Each has a
// private scratch tensor (its "layer" tensor, grounded via mmLayers) and
// produces one output tensor handed to the next operator (grounded via
// mmTransitions).
type operator struct {
	name        string
	scratchSize int64
	outputSize  int64
	alignment   int64
}

var demoGraph = []operator{
	{name: "conv1", scratchSize: 4096, alignment: 64, outputSize: 2048},
	{name: "conv2", scratchSize: 8192, alignment: 64, outputSize: 1024},
	{name: "fc1", scratchSize: 1024, alignment: 32, outputSize: 256},
	{name: "softmax", scratchSize: 0, alignment: 16, outputSize: 64},
}

func runDemo(w io.Writer, lm tensormem.LifetimeManager) error {
	mgrLayers := tensormem.NewMemoryManager(lm)
	layersGroup := tensormem.NewGroup(mgrLayers)

	mmTransitions := tensormem.NewOffsetLifetimeManager()
	mgrTransitions := tensormem.NewMemoryManager(mmTransitions)
	transitionsGroup := tensormem.NewGroup(mgrTransitions)

	layerHandles := make(map[string]*tensormem.HostHandle)
	transitionHandles := make(map[string]*tensormem.HostHandle)

	// Every tensor is managed before any is finalized: a group's planning
	// pass completes as soon as all of its started lifetimes have ended,
	// after which Manage is a no-op for that group.
	for _, op := range demoGraph {
		if op.scratchSize > 0 {
			layerHandles[op.name] = tensormem.NewHostHandle()
			layersGroup.Manage(op.name)
		}
		transitionHandles[op.name] = tensormem.NewHostHandle()
		transitionsGroup.Manage(op.name)
	}
	for _, op := range demoGraph {
		if h, ok := layerHandles[op.name]; ok {
			layersGroup.FinalizeMemory(op.name, h, op.scratchSize, op.alignment)
		}
		transitionsGroup.FinalizeMemory(op.name, transitionHandles[op.name], op.outputSize, op.alignment)
	}

	alloc := tensormem.NewHeapAllocator()
	if err := mgrLayers.Populate(alloc, 1); err != nil {
		return fmt.Errorf("populate layers manager: %w", err)
	}
	if err := mgrTransitions.Populate(alloc, 1); err != nil {
		return fmt.Errorf("populate transitions manager: %w", err)
	}

	layersGroup.Acquire()
	defer layersGroup.Release()
	transitionsGroup.Acquire()
	defer transitionsGroup.Release()

	printLayout(w, "layers ("+lm.MappingKind().String()+")", layerHandles, layersGroup)
	printLayout(w, "transitions (offset)", transitionHandles, transitionsGroup)
	return nil
}

// RunBlobDemo plans the demo graph's per-operator scratch tensors with the
// blob-per-class lifetime manager.
func RunBlobDemo(w io.Writer) error {
	return runDemo(w, tensormem.NewBlobLifetimeManager())
}

// RunOffsetDemo plans the demo graph's per-operator scratch tensors with
// the single-arena offset lifetime manager.
func RunOffsetDemo(w io.Writer) error {
	return runDemo(w, tensormem.NewOffsetLifetimeManager())
}

func printLayout(w io.Writer, title string, handles map[string]*tensormem.HostHandle, group *tensormem.Group) {
	fmt.Fprintf(w, "\n%s\n", title)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"operator", "slot", "bytes bound"})
	for _, op := range demoGraph {
		h, ok := handles[op.name]
		if !ok {
			continue
		}
		slot, _ := group.Mappings()[h]
		table.Append([]string{op.name, fmt.Sprintf("%d", slot), fmt.Sprintf("%d", len(h.Storage()))})
	}
	table.Render()
}
