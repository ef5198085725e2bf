// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Column is one field of a result row.
type Column struct {
	// Key is the row field the column reads.
	Key string `yaml:"key"`
	// Include controls whether the column is rendered or only available for
	// filtering and sorting.
	Include bool `yaml:"include"`
	// Title is the header used when output=text.
	Title string `yaml:"title"`
	// TransformSpec is applied to string values before rendering.
	TransformSpec string `yaml:"transformSpec"`
}

// Transform applies the column's transform spec. Letters l and u change case,
// the last one wins. A number truncates to that length; a negative number
// elides the middle instead.
func (c Column) Transform(value any) any {
	result, ok := value.(string)
	if !ok || c.TransformSpec == "" {
		return value
	}

	lastL := strings.LastIndexAny(c.TransformSpec, "lL")
	lastU := strings.LastIndexAny(c.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	match := lengthRegex.FindAllString(c.TransformSpec, -1)
	if len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		if len(result) > abs {
			if l < 0 {
				lr := abs/2 - 1
				if lr < 1 {
					lr = 1
				}
				result = result[:lr] + ".." + result[len(result)-lr:]
			} else {
				result = result[:l]
			}
		}
	}

	return result
}

// Columns is the ordered column set of a result.
type Columns []Column

// NewColumns builds an included column per key, titled by the key.
func NewColumns(keys ...string) Columns {
	cols := make(Columns, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, Column{Key: k, Include: true, Title: k})
	}
	return cols
}

// String returns the column set in --columns syntax.
func (c *Columns) String() string {
	result := make([]string, 0, len(*c))
	for _, col := range *c {
		result = append(result, fmt.Sprintf("%s:%s:%s", col.Key, col.Title, col.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set merges a --columns spec into the set. Each comma separated entry is
// key[:title[:transform]]. A leading ! hides the column. A key of * applies
// its transform to every column. Keys already present are updated in place.
func (c *Columns) Set(value string) error {
	if value == "" {
		return nil
	}

	const (
		keyIdx = iota
		titleIdx
		transformIdx
	)

	global := ""
specloop:
	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")

		col := Column{Include: true}
		col.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(col.Key, "!") {
			col.Include = false
			col.Key = col.Key[1:]
		}
		if col.Key == "" {
			return fmt.Errorf("invalid column spec %q", spec)
		}

		col.Title = col.Key
		if len(fields) > titleIdx && strings.TrimSpace(fields[titleIdx]) != "" {
			col.Title = strings.TrimSpace(fields[titleIdx])
		}
		if len(fields) > transformIdx {
			col.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		if col.Key == "*" {
			global = col.TransformSpec
			continue
		}

		for i := range *c {
			if (*c)[i].Key == col.Key {
				(*c)[i] = col
				continue specloop
			}
		}
		*c = append(*c, col)
	}

	if global != "" {
		for i := range *c {
			(*c)[i].TransformSpec = global + "," + (*c)[i].TransformSpec
		}
	}

	return nil
}

// Titles returns the titles of the included columns.
func (c Columns) Titles() []string {
	var titles []string
	for _, col := range c {
		if col.Include {
			titles = append(titles, col.Title)
		}
	}
	return titles
}
