package common

import (
	"fmt"
	"io"
)

const headerTemplate = `/* packet-%s.c
 * Routines for IDL dissection
 *
 * Autogenerated by giopgen %s
 * Input digest: %s
 */

`

const copyrightNotice = `/*
 * Ethereal - Network traffic analyzer
 * By Gerald Combs
 * Copyright 1999 Gerald Combs
 */

`

const gplNotice = `/*
 * This program is free software; you can redistribute it and/or
 * modify it under the terms of the GNU General Public License
 * as published by the Free Software Foundation; either version 2
 * of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */
`

// WriteLicenseHeader writes the file banner, the analyzer copyright and the
// GPL notice that open every generated dissector.
func WriteLicenseHeader(w io.Writer, dissectorName, version, digest string) error {
	if _, err := fmt.Fprintf(w, headerTemplate, dissectorName, version, digest); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := io.WriteString(w, copyrightNotice+gplNotice); err != nil {
		return fmt.Errorf("write license: %w", err)
	}
	return nil
}
