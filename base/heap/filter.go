// Copyright 2025 filmrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package heap

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Elem is a weighted element in a heap.
type Elem[T any, W constraints.Ordered] struct {
	Value  T
	Weight W
}

type minHeap[T any, W constraints.Ordered] struct {
	elems []Elem[T, W]
}

func (h *minHeap[T, W]) Len() int {
	return len(h.elems)
}

func (h *minHeap[T, W]) Less(i, j int) bool {
	return h.elems[i].Weight < h.elems[j].Weight
}

func (h *minHeap[T, W]) Swap(i, j int) {
	h.elems[i], h.elems[j] = h.elems[j], h.elems[i]
}

func (h *minHeap[T, W]) Push(x interface{}) {
	h.elems = append(h.elems, x.(Elem[T, W]))
}

func (h *minHeap[T, W]) Pop() interface{} {
	old := h.elems
	item := old[len(old)-1]
	h.elems = old[:len(old)-1]
	return item
}

// TopKFilter filters out top k elements with maximum weights.
type TopKFilter[T any, W constraints.Ordered] struct {
	minHeap[T, W]
	k int
}

// NewTopKFilter creates a top k filter.
func NewTopKFilter[T any, W constraints.Ordered](k int) *TopKFilter[T, W] {
	return &TopKFilter[T, W]{k: k}
}

// Push pushes an element onto the filter. The complexity is O(log k).
func (filter *TopKFilter[T, W]) Push(value T, weight W) {
	heap.Push(&filter.minHeap, Elem[T, W]{value, weight})
	if filter.Len() > filter.k {
		heap.Pop(&filter.minHeap)
	}
}

// PopAll pops all elements in the filter with decreasing weights.
func (filter *TopKFilter[T, W]) PopAll() ([]T, []W) {
	values := make([]T, filter.Len())
	weights := make([]W, filter.Len())
	for i := len(values) - 1; i >= 0; i-- {
		elem := heap.Pop(&filter.minHeap).(Elem[T, W])
		values[i], weights[i] = elem.Value, elem.Weight
	}
	return values, weights
}
