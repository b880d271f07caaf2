// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testRows() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "zebra", "size": 3.0, "state": "valid"},
		{"name": "Alpha", "size": 1.0, "state": "expired"},
		{"name": "beta", "size": 2.0, "state": "corrupt"},
	}
}

func names(rows []map[string]interface{}) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["name"].(string))
	}
	return out
}

func TestSortDataset(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{name: "ascending by name", spec: "name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by name", spec: "-name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "ascending by size", spec: "size", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by size", spec: "-size", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "case sensitive", spec: "!name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "case sensitive descending", spec: "-!name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "multiple fields", spec: "state,name", wantOrder: []string{"beta", "Alpha", "zebra"}},
		{name: "missing key keeps order", spec: "nope", wantOrder: []string{"zebra", "Alpha", "beta"}},
		{name: "empty spec", spec: "", wantOrder: []string{"zebra", "Alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testRows()
			SortDataset(data, tt.spec)
			assert.Equal(t, tt.wantOrder, names(data))
		})
	}
}

func TestSortDataset_CaseSensitivity(t *testing.T) {
	data := []map[string]interface{}{{"name": "b"}, {"name": "B"}, {"name": "a"}}

	SortDataset(data, "!name")
	assert.Equal(t, []string{"B", "a", "b"}, names(data))

	SortDataset(data, "name")
	assert.Equal(t, "a", data[0]["name"])
}

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		spec string
		want []Filter
	}{
		{"", nil},
		{"state=expired", []Filter{{Key: "state", Operand: "=", Target: "expired"}}},
		{"state!=expired", []Filter{{Key: "state", Negate: true, Operand: "=", Target: "expired"}}},
		{"name^client,size>1", []Filter{
			{Key: "name", Operand: "^", Target: "client"},
			{Key: "size", Operand: ">", Target: "1"},
		}},
		{"name/^a.*z$", []Filter{{Key: "name", Operand: "/", Target: "^a.*z$"}}},
		{"garbage", nil},
		{"=nokey", nil},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilters(tt.spec))
		})
	}
}

func TestBuildFilters_Delimiter(t *testing.T) {
	t.Setenv("FCACHE_FILTER_DELIM", ";")
	got := BuildFilters("name@a,b;state=valid")
	require.Len(t, got, 2)
	assert.Equal(t, "a,b", got[0].Target)
}

func TestFilterRows(t *testing.T) {
	tests := []struct {
		spec string
		want []string
	}{
		{"", []string{"zebra", "Alpha", "beta"}},
		{"state=expired", []string{"Alpha"}},
		{"state!=expired", []string{"zebra", "beta"}},
		{"name~ALPHA", []string{"Alpha"}},
		{"name@e", []string{"zebra", "beta"}},
		{"name!@e", []string{"Alpha"}},
		{"name/^[a-z]+$", []string{"zebra", "beta"}},
		{"size=2", []string{"beta"}},
		{"unknown=x", []string{"zebra", "Alpha", "beta"}},
		{"state=valid,name^z", []string{"zebra"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterRows(testRows(), tt.spec)))
		})
	}
}

func TestCheckContainsOperand(t *testing.T) {
	list := []any{"a", "b"}
	m := map[string]any{"k": 1}

	assert.True(t, checkContainsOperand(list, Filter{Operand: "@", Target: "a"}))
	assert.False(t, checkContainsOperand(list, Filter{Operand: "@", Target: "c"}))
	assert.True(t, checkContainsOperand(list, Filter{Operand: "@", Target: "c", Negate: true}))
	assert.True(t, checkContainsOperand(m, Filter{Operand: "@", Target: "k"}))
	assert.False(t, checkContainsOperand(m, Filter{Operand: "@", Target: "k", Negate: true}))
	assert.False(t, checkContainsOperand(list, Filter{Operand: "=", Target: "a"}))
}

func TestSliceDiceSpit(t *testing.T) {
	columns := []string{"name", "size", "state"}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(&buf, testRows(), columns, Options{Format: "json", Sort: "name"}))

		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, []string{"Alpha", "beta", "zebra"}, names(got))
	})

	t.Run("json empty is an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(&buf, nil, columns, Options{Format: "json"}))
		assert.JSONEq(t, `[]`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(&buf, testRows(), columns, Options{Format: "yaml", Filter: "state=valid"}))

		var got []map[string]interface{}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "zebra", got[0]["name"])
	})

	t.Run("text with titles", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(&buf, testRows(), columns, Options{Format: "text", Sort: "-size", Titles: true}))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, []string{"name", "size", "state"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"zebra", "3", "valid"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"Alpha", "1", "expired"}, strings.Fields(lines[3]))
	})

	t.Run("text without rows prints nothing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(&buf, nil, columns, Options{}))
		assert.Empty(t, buf.String())
	})
}

func TestTableWriter_Formatters(t *testing.T) {
	var buf bytes.Buffer
	o := Options{
		Sort: "size",
		Formatters: map[string]func(interface{}) string{
			"size": func(v interface{}) string { return "~" + InterfaceToString(v) },
		},
	}
	require.NoError(t, SliceDiceSpit(&buf, testRows(), []string{"name", "size"}, o))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Alpha", "~1"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"zebra", "~3"}, strings.Fields(lines[2]))
}

func TestSortDataset_Times(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	data := []map[string]interface{}{
		{"name": "late", "expires": now.Add(time.Hour)},
		{"name": "never"},
		{"name": "early", "expires": now},
	}
	SortDataset(data, "expires")
	assert.Equal(t, []string{"never", "early", "late"}, names(data))
}

func TestSpitValue(t *testing.T) {
	v := map[string]interface{}{"entries": 3, "expired": 0}
	columns := []string{"entries", "expired"}

	var buf bytes.Buffer
	require.NoError(t, SpitValue(&buf, v, columns, Options{Format: "json"}))
	assert.JSONEq(t, `{"entries":3,"expired":0}`, buf.String())

	buf.Reset()
	require.NoError(t, SpitValue(&buf, v, columns, Options{Format: "text"}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"entries", "3"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"expired", "0"}, strings.Fields(lines[1]))
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(4096), want: "4096"},
		{name: "float64", value: 42.5, want: "42"},
		{name: "float64 with decimal", value: 42.7, want: "43"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false is zero value", value: false, want: ""},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "slice", value: []string{"a", "b"}, want: `["a","b"]`},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
		{name: "zero value int", value: 0, want: ""},
		{name: "zero value with custom empty", value: 0, emptyVal: "N/A", want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetColors(t *testing.T) {
	t.Setenv("FCACHE_CFG", "/nonexistent/fcache.yaml")
	header, even, odd := getColors("colors")
	assert.Equal(t, "#f6be00", header)
	assert.Equal(t, "#ffffff", even)
	assert.Equal(t, "#00c8f0", odd)
}

func BenchmarkSortDataset(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SortDataset(testRows(), "name")
	}
}
