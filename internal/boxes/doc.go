// Package boxes computes per-character bounding boxes for rendered training text.
//
// Given a string, the metrics of the font it is painted with, the canvas geometry
// and a margin policy, Compute returns one CharBox per rune in the order the runes
// appear in the string. Boxes are expressed in the coordinate convention of
// Tesseract box files.
//
// # Coordinate System
//
// Two conventions meet in this package:
//   - Canvas space: origin (0,0) at the top-left corner, Y increases downward.
//     The text baseline origin of a Canvas is given in this space.
//   - Box space: origin (0,0) at the bottom-left corner, Y increases upward.
//     Every CharBox is expressed in this space.
//
// Conversion is top = Height - yTop and bottom = Height - yBottom. CharBox.Rect
// performs the inverse for overlay drawing.
//
// # Margin Conventions
//
// Box corrections are stored per font as (left, top, right, bottom) offsets.
// Two sign conventions exist and are not interchangeable:
//
//	Subtractive: right = x + advance - m.Right   yBottom = y0 + descent + m.Bottom
//	Additive:    right = x + advance + m.Right   yBottom = y0 + descent - m.Bottom
//
// Both conventions use left = x + m.Left and yTop = y0 - ascent - m.Top. The
// convention is always stated explicitly; it is never inferred from the values.
//
// # Clipping
//
// Coordinates are clamped independently into [0, Width] and [0, Height] and then
// truncated toward zero. Clamping can collapse a box to zero width or height at
// the canvas edges; that is accepted and is not reported as an error.
//
// # Box Files
//
// Format and Parse read and write the line format consumed by Tesseract training:
//
//	<char> <left> <bottom> <right> <top> 0
//
// Lines are joined with "\n" and no trailing newline is written.
package boxes
