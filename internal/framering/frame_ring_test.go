// SPDX-License-Identifier: AGPL-3.0-or-later
// nxdnhost - Run an NXDN Type-C trunked repeater host in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/dvm-nxdn/nxdnhost>

package framering_test

import (
	"testing"

	"github.com/dvm-nxdn/nxdnhost/internal/framering"
	"github.com/dvm-nxdn/nxdnhost/internal/nxdnconst"
)

func TestAddAndGet(t *testing.T) {
	t.Parallel()
	r := framering.New(16)

	if err := r.Add([]byte("hi")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, ok := r.Get()
	if !ok {
		t.Fatal("expected a record")
	}
	if string(record) != "hi" {
		t.Errorf("expected 'hi', got %q", record)
	}
}

func TestQueueFull(t *testing.T) {
	t.Parallel()
	r := framering.New(4)

	if err := r.Add([]byte("abcd")); err == nil {
		t.Fatal("expected QUEUE_FULL for a record that cannot fit with its prefix")
	} else if err != nxdnconst.ErrQueueFull {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	r := framering.New(16)
	_ = r.Add([]byte("x"))
	r.Clear()
	if _, ok := r.Get(); ok {
		t.Error("expected empty ring after Clear")
	}
}

func TestPeekLengthDoesNotConsume(t *testing.T) {
	t.Parallel()
	r := framering.New(16)
	_ = r.Add([]byte("abcd"))

	length, ok := r.PeekLength()
	if !ok || length != 4 {
		t.Fatalf("expected length 4, got %d ok=%v", length, ok)
	}
	record, ok := r.Get()
	if !ok || len(record) != 4 {
		t.Fatalf("peek must not consume the record")
	}
}

func TestResizeRejectedOnNonRFRing(t *testing.T) {
	t.Parallel()
	r := framering.New(16)
	if err := r.Resize(32); err != nxdnconst.ErrNotPermitted {
		t.Errorf("expected ErrNotPermitted, got %v", err)
	}
}

func TestResizeGrowsWithoutLosingRecords(t *testing.T) {
	t.Parallel()
	r := framering.NewRFQueue(8)
	_ = r.Add([]byte("ab"))
	_ = r.Add([]byte("cd"))

	if err := r.Resize(32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, ok := r.Get()
	if !ok || string(first) != "ab" {
		t.Errorf("expected 'ab' after resize, got %q ok=%v", first, ok)
	}
	second, ok := r.Get()
	if !ok || string(second) != "cd" {
		t.Errorf("expected 'cd' after resize, got %q ok=%v", second, ok)
	}
}

func TestWraparound(t *testing.T) {
	t.Parallel()
	r := framering.New(8)
	_ = r.Add([]byte("aa"))
	_, _ = r.Get()
	_ = r.Add([]byte("bb"))
	_ = r.Add([]byte("cc"))

	rec, ok := r.Get()
	if !ok || string(rec) != "bb" {
		t.Fatalf("expected 'bb', got %q ok=%v", rec, ok)
	}
}
