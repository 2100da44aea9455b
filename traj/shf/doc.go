/*
 * doc.go, part of gohop.
 *
 * Copyright 2025 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * */

//Package shf implements the surface-hopping frame format, a compressed,
//line-oriented record of a swarm of hopping trajectories. shf aims to
//produce small files that stay trivial to parse from any language, so the
//analysis does not have to happen in the program that ran the dynamics.
/*

******************** Format Specification ********************

An SHF file may only contain ASCII symbols, and is compressed according to
the last letter of its name: "z" for z-standard, "g" for gzip, "f" for flate.
Any other ending is read and written as z-standard. The recommended
extensions are .shz, .shg and .shf.

An SHF file has a header starting in the first line and ending with a line
that starts with the characters "**", followed by whitespace and the pairs
nstates=N and traj=K, where N is the number of electronic states per record
and K the number of trajectories (records) per frame.

Every header line before the "**" line must be a pair key=value, with
arbitrary metadata. The header may have no such lines. Keys and values may
not contain the "=" character.

After the header the file carries one line per trajectory, per frame. Each
line contains, separated by single spaces: the step number (integer), the
simulated time, the kinetic energy, the potential energy (floating point,
atomic units), the occupied surface (integer, 0-based), and N electronic
populations (floating point). Floating point numbers should be written with
enough digits for an exact float64 read-back.

Each frame ends with a line starting with the character "*" and nothing
before it. The "**" sequence may only be used as the header termination and
cannot appear anywhere else in the file.

**************************************************************

*/
package shf
