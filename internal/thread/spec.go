/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package thread

import (
	"fmt"
	"strings"
)

// Kind tells whether a thread is used for filling or outlining.
type Kind uint8

const (
	Fill Kind = iota
	Stroke
)

func (k Kind) String() string {
	if k == Fill {
		return "Fill"
	}
	return "Stroke"
}

// suffix is the catalog number suffix for the kind.
func (k Kind) suffix() string {
	if k == Fill {
		return "F"
	}
	return "S"
}

const (
	Brand  = "SVG"
	Weight = "40"
)

// Spec describes the thread loaded at one color change.
type Spec struct {
	Color         RGB    `json:"color"`
	Hex           string `json:"hex"`
	Description   string `json:"description"`
	Brand         string `json:"brand"`
	CatalogNumber string `json:"catalog_number"`
	Weight        string `json:"weight"`
}

// NewSpec builds the thread entry for the index-th shape (1-based); token is
// the color as written in the source document.
func NewSpec(kind Kind, token string, c RGB, index int) Spec {
	return Spec{
		Color:         c,
		Hex:           c.Hex(),
		Description:   fmt.Sprintf("%s %s", kind, token),
		Brand:         Brand,
		CatalogNumber: fmt.Sprintf("%03d%s", index, kind.suffix()),
		Weight:        Weight,
	}
}

// Kind recovers the use of the thread from its catalog number.
func (s Spec) Kind() Kind {
	if strings.HasSuffix(s.CatalogNumber, Stroke.suffix()) {
		return Stroke
	}
	return Fill
}
