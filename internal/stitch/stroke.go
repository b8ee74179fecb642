/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stitch

// Stroke follows the contour: a move to the first point and a stitch to each
// following point. Closed contours get a final stitch back to the start when
// the sampled points do not already end there.
func Stroke(c Contour) []Command {
	if len(c.Points) == 0 {
		return nil
	}
	out := make([]Command, 0, len(c.Points)+1)
	out = append(out, Move(c.Points[0]))
	for _, p := range c.Points[1:] {
		out = append(out, Stitch(p))
	}
	last := c.Points[len(c.Points)-1]
	if c.Closed && len(c.Points) > 1 && last != c.Points[0] {
		out = append(out, Stitch(c.Points[0]))
	}
	return out
}
