/*
 * conversion.go, part of gohop.
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
 */

package hop

//This provides conversion factors in and out of the atomic units the whole
//library works in.

//Conversions
const (
	Fs2AU   = 1 / 0.02419         //femtoseconds to atomic time units
	AU2Fs   = 0.02419             //atomic time units to femtoseconds
	EV2H    = 1 / 27.211          //electronvolt to Hartree
	H2EV    = 27.211              //Hartree to electronvolt
	InvCm2H = EV2H / 8065.54468111324 //wavenumbers to Hartree
	H2InvCm = 8065.54468111324 * 27.211
	Amu2Em  = 1822.888486 //atomic mass units to electron masses
	Em2Amu  = 1 / 1822.888486
)
