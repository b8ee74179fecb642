/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package thread

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ChartEntry is one color of a manufacturer thread chart.
type ChartEntry struct {
	Color RGB
	Name  string
	Code  string
}

// Chart is a machine thread table. Files that store colors as chart
// positions refer to entries by index.
type Chart []ChartEntry

// Nearest returns the index of the entry perceptually closest to c, using
// CIEDE2000 in Lab space. Entries before first are never chosen.
func (ch Chart) Nearest(c RGB, first int) int {
	want, _ := colorful.MakeColor(c.RGBA())
	best, bestDist := first, math.Inf(1)
	for i := first; i < len(ch); i++ {
		have, _ := colorful.MakeColor(ch[i].Color.RGBA())
		if d := want.DistanceCIEDE2000(have); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func rgb(v uint32) RGB { return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)} }

// PEC is the Brother thread chart used by PES/PEC files. Index 0 is unused;
// files store 1..64.
var PEC = Chart{
	{Name: "Unknown"},
	{rgb(0x1a0a94), "Prussian Blue", ""},
	{rgb(0x0f75ff), "Blue", "405"},
	{rgb(0x00934c), "Teal Green", "534"},
	{rgb(0xbabdfe), "Corn Flower Blue", "070"},
	{rgb(0xec0000), "Red", "800"},
	{rgb(0xe4995a), "Reddish Brown", "337"},
	{rgb(0xcc48ab), "Magenta", "620"},
	{rgb(0xfdc4fa), "Light Lilac", "810"},
	{rgb(0xdd84cd), "Lilac", "612"},
	{rgb(0x6bd38a), "Mint Green", "502"},
	{rgb(0xe4a945), "Deep Gold", "214"},
	{rgb(0xffbd42), "Orange", "208"},
	{rgb(0xffe600), "Yellow", "205"},
	{rgb(0x6cd900), "Lime Green", "513"},
	{rgb(0xc1a941), "Brass", "328"},
	{rgb(0xb5ad97), "Silver", "005"},
	{rgb(0xba9c5f), "Russet Brown", "330"},
	{rgb(0xfaf59e), "Cream Brown", "010"},
	{rgb(0x808080), "Pewter", "704"},
	{rgb(0x000000), "Black", "900"},
	{rgb(0x001cdf), "Ultramarine", "406"},
	{rgb(0xdf00b8), "Royal Purple", "869"},
	{rgb(0x626262), "Dark Gray", "707"},
	{rgb(0x69260d), "Dark Brown", "058"},
	{rgb(0xff0060), "Deep Rose", "086"},
	{rgb(0xbf8200), "Light Brown", "323"},
	{rgb(0xf39178), "Salmon Pink", "079"},
	{rgb(0xff6805), "Vermilion", "030"},
	{rgb(0xf0f0f0), "White", "001"},
	{rgb(0xc832cd), "Violet", "613"},
	{rgb(0xb0bf9b), "Seacrest", "542"},
	{rgb(0x65bfeb), "Sky Blue", "019"},
	{rgb(0xffba04), "Pumpkin", "126"},
	{rgb(0xfff06c), "Cream Yellow", "010"},
	{rgb(0xfeca15), "Khaki", "348"},
	{rgb(0xf38101), "Clay Brown", "339"},
	{rgb(0x37a923), "Leaf Green", "509"},
	{rgb(0x23465f), "Peacock Blue", "405"},
	{rgb(0xa6a695), "Gray", "707"},
	{rgb(0xcebfa6), "Warm Gray", "399"},
	{rgb(0x96aa02), "Dark Olive", "517"},
	{rgb(0xffe3c6), "Linen", "307"},
	{rgb(0xff99d7), "Pink", "085"},
	{rgb(0x007004), "Deep Green", "808"},
	{rgb(0xedccfb), "Lavender", "804"},
	{rgb(0xc089d8), "Wisteria Violet", "607"},
	{rgb(0xe7d9b4), "Beige", "843"},
	{rgb(0xe90e86), "Carmine", "807"},
	{rgb(0xcf6829), "Amber Red", "333"},
	{rgb(0x408615), "Olive Green", "519"},
	{rgb(0xdb1797), "Dark Fuchsia", "107"},
	{rgb(0xffa704), "Tangerine", "209"},
	{rgb(0xb9ffff), "Light Blue", "017"},
	{rgb(0x228927), "Emerald Green", "507"},
	{rgb(0xb612cd), "Purple", "614"},
	{rgb(0x00aa00), "Moss Green", "515"},
	{rgb(0xfea9dc), "Flesh Pink", "124"},
	{rgb(0xfed510), "Harvest Gold", "206"},
	{rgb(0x0097df), "Electric Blue", "420"},
	{rgb(0xffff84), "Lemon Yellow", "205"},
	{rgb(0xcfe774), "Fresh Green", "027"},
	{rgb(0xffc864), "Applique Material", ""},
	{rgb(0xffc8c8), "Applique Position", ""},
	{rgb(0xffc8c8), "Applique", ""},
}

// Janome is the base Janome thread chart used by JEF files. Index 0 is unused.
var Janome = Chart{
	{Name: "Placeholder", Code: "000"},
	{rgb(0x000000), "Black", "002"},
	{rgb(0xffffff), "White", "001"},
	{rgb(0xffff17), "Yellow", "204"},
	{rgb(0xff6600), "Orange", "203"},
	{rgb(0x2f5933), "Olive Green", "219"},
	{rgb(0x237336), "Green", "226"},
	{rgb(0x65c2c8), "Sky", "217"},
	{rgb(0xab5a96), "Purple", "208"},
	{rgb(0xf669a0), "Pink", "201"},
	{rgb(0xff0000), "Red", "225"},
	{rgb(0xb1704e), "Brown", "214"},
	{rgb(0x0b2f84), "Blue", "207"},
	{rgb(0xe4c35d), "Gold", "003"},
	{rgb(0x481a05), "Dark Brown", "205"},
	{rgb(0xac9cc7), "Pale Violet", "209"},
	{rgb(0xfcf294), "Pale Yellow", "210"},
	{rgb(0xf999b7), "Pale Pink", "211"},
	{rgb(0xfab381), "Peach", "212"},
	{rgb(0xc9a480), "Beige", "213"},
	{rgb(0x970533), "Wine Red", "234"},
	{rgb(0xa0b8cc), "Pale Sky", "202"},
	{rgb(0x7fc21c), "Yellow Green", "206"},
	{rgb(0xe5e5e5), "Silver Gray", "218"},
	{rgb(0x889b9b), "Gray", "220"},
	{rgb(0x98d6bd), "Pale Aqua", "227"},
	{rgb(0xb2e1e3), "Baby Blue", "228"},
	{rgb(0x368ba0), "Powder Blue", "229"},
	{rgb(0x4f83ab), "Bright Blue", "230"},
	{rgb(0x386a91), "Slate Blue", "231"},
	{rgb(0x071650), "Navy Blue", "232"},
}
