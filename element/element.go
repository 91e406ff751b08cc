// Package element provides atomic numbers and standard atomic masses.
package element

import "fmt"

// Element describes a chemical element.
type Element struct {
	Symbol string
	Number int
	// Mass is the standard atomic weight in atomic mass units.
	Mass float64
}

var bySymbol = map[string]Element{
	"H":  {"H", 1, 1.008},
	"He": {"He", 2, 4.002602},
	"Li": {"Li", 3, 6.94},
	"Be": {"Be", 4, 9.0121831},
	"B":  {"B", 5, 10.81},
	"C":  {"C", 6, 12.011},
	"N":  {"N", 7, 14.007},
	"O":  {"O", 8, 15.999},
	"F":  {"F", 9, 18.998403163},
	"Ne": {"Ne", 10, 20.1797},
	"Na": {"Na", 11, 22.98976928},
	"Mg": {"Mg", 12, 24.305},
	"Al": {"Al", 13, 26.9815385},
	"Si": {"Si", 14, 28.085},
	"P":  {"P", 15, 30.973761998},
	"S":  {"S", 16, 32.06},
	"Cl": {"Cl", 17, 35.45},
	"Ar": {"Ar", 18, 39.948},
	"K":  {"K", 19, 39.0983},
	"Ca": {"Ca", 20, 40.078},
	"Sc": {"Sc", 21, 44.955908},
	"Ti": {"Ti", 22, 47.867},
	"V":  {"V", 23, 50.9415},
	"Cr": {"Cr", 24, 51.9961},
	"Mn": {"Mn", 25, 54.938044},
	"Fe": {"Fe", 26, 55.845},
	"Co": {"Co", 27, 58.933194},
	"Ni": {"Ni", 28, 58.6934},
	"Cu": {"Cu", 29, 63.546},
	"Zn": {"Zn", 30, 65.38},
	"Ga": {"Ga", 31, 69.723},
	"Ge": {"Ge", 32, 72.63},
	"As": {"As", 33, 74.921595},
	"Se": {"Se", 34, 78.971},
	"Br": {"Br", 35, 79.904},
	"Kr": {"Kr", 36, 83.798},
	"Ag": {"Ag", 47, 107.8682},
	"I":  {"I", 53, 126.90447},
	"Xe": {"Xe", 54, 131.293},
	"Pt": {"Pt", 78, 195.084},
	"Au": {"Au", 79, 196.966569},
	"Hg": {"Hg", 80, 200.592},
	"Pb": {"Pb", 82, 207.2},
}

// Lookup returns the element for a chemical symbol.
func Lookup(symbol string) (Element, error) {
	e, ok := bySymbol[symbol]
	if !ok {
		return Element{}, fmt.Errorf("element: unknown symbol %q", symbol)
	}
	return e, nil
}

// MassOf returns the standard atomic mass of a symbol in amu.
func MassOf(symbol string) (float64, error) {
	e, err := Lookup(symbol)
	if err != nil {
		return 0, err
	}
	return e.Mass, nil
}

// NumberOf returns the atomic number of a symbol.
func NumberOf(symbol string) (int, error) {
	e, err := Lookup(symbol)
	if err != nil {
		return 0, err
	}
	return e.Number, nil
}

// MassesOf returns the masses of a species list, in order.
func MassesOf(species []string) ([]float64, error) {
	masses := make([]float64, len(species))
	for i, s := range species {
		m, err := MassOf(s)
		if err != nil {
			return nil, err
		}
		masses[i] = m
	}
	return masses, nil
}
