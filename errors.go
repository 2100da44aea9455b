/*
 * errors.go, part of gohop.
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

// Error is the interface for errors that all packages in this library implement. The Decorate
// method allows to add and retrieve info from the error, without changing its type or wrapping
// it around something else. The decorate slice should contain a list of the functions in the
// calling stack, plus, for each function, any relevant information, or nothing. If information
// is added to an element of the slice, it should be in the format "FunctionName: Extra info".
type Error interface {
	Error() string
	Decorate(string) []string //If passed an empty string, returns the current decoration without adding to it.
}

// CError is the concrete type for errors in the hop package. It implements hop.Error.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds new information to the error
func (err CError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//errDecorate asserts that the error implements hop.Error and decorates it with
//the caller's name before returning it. Errors from outside the library are
//returned unchanged.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

// TrajError is the interface for errors in trajectory files.
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError has a useless function to distinguish the harmless errors
// (i.e. last frame) so they can be filtered in a typeswitch that looks for
// this interface.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's
}

//Common messages for errors and panics. The dimension mismatches are configuration
//errors: nothing is computed when one is detected.
const (
	ErrStatesMismatch  = "goHop: Electronic states and vibronic snapshot have different dimensions"
	ErrDOFMismatch     = "goHop: Vectors given for the nuclear degrees of freedom have different lengths"
	ErrNilElectronic   = "goHop: Nil electronic state given"
	ErrNilVibronic     = "goHop: Nil vibronic snapshot given"
	ErrNilNuclear      = "goHop: Nil nuclear state given"
	ErrEnsembleScheme  = "goHop: The ESH scheme needs the whole ensemble, use the ensemble package"
	ErrNoCouplings     = "goHop: The vibronic snapshot carries no derivative couplings"
	ErrStateOutOfRange = "goHop: Electronic state index out of range"
)
