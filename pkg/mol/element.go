package mol

// Element describes one entry of the periodic table as far as depiction is
// concerned: the atomic number for priority ordering, the list of normal
// valences in ascending order for implicit hydrogen derivation, and the CPK
// display colour used as the fallback when a theme has no override.
type Element struct {
	Number   int
	Valences []int
	Color    string
}

// elements maps uppercase symbols to their table entries. Valence lists
// follow the common SMILES normal valence model (e.g. N is 3 or 5, S is
// 2, 4 or 6). Colours are the Jmol CPK set.
var elements = map[string]Element{
	"H":  {1, []int{1}, "#FFFFFF"},
	"He": {2, []int{0}, "#D9FFFF"},
	"Li": {3, []int{1}, "#CC80FF"},
	"Be": {4, []int{2}, "#C2FF00"},
	"B":  {5, []int{3}, "#FFB5B5"},
	"C":  {6, []int{4}, "#909090"},
	"N":  {7, []int{3, 5}, "#3050F8"},
	"O":  {8, []int{2}, "#FF0D0D"},
	"F":  {9, []int{1}, "#90E050"},
	"Ne": {10, []int{0}, "#B3E3F5"},
	"Na": {11, []int{1}, "#AB5CF2"},
	"Mg": {12, []int{2}, "#8AFF00"},
	"Al": {13, []int{3}, "#BFA6A6"},
	"Si": {14, []int{4}, "#F0C8A0"},
	"P":  {15, []int{3, 5}, "#FF8000"},
	"S":  {16, []int{2, 4, 6}, "#FFFF30"},
	"Cl": {17, []int{1}, "#1FF01F"},
	"Ar": {18, []int{0}, "#80D1E3"},
	"K":  {19, []int{1}, "#8F40D4"},
	"Ca": {20, []int{2}, "#3DFF00"},
	"Ti": {22, []int{4}, "#BFC2C7"},
	"Cr": {24, []int{3, 6}, "#8A99C7"},
	"Mn": {25, []int{2, 4, 7}, "#9C7AC7"},
	"Fe": {26, []int{2, 3}, "#E06633"},
	"Co": {27, []int{2, 3}, "#F090A0"},
	"Ni": {28, []int{2}, "#50D050"},
	"Cu": {29, []int{1, 2}, "#C88033"},
	"Zn": {30, []int{2}, "#7D80B0"},
	"Ga": {31, []int{3}, "#C28F8F"},
	"Ge": {32, []int{4}, "#668F8F"},
	"As": {33, []int{3, 5}, "#BD80E3"},
	"Se": {34, []int{2, 4, 6}, "#FFA100"},
	"Br": {35, []int{1}, "#A62929"},
	"Kr": {36, []int{0}, "#5CB8D1"},
	"Sr": {38, []int{2}, "#00FF00"},
	"Mo": {42, []int{4, 6}, "#54B5B5"},
	"Ru": {44, []int{3, 4}, "#248F8F"},
	"Pd": {46, []int{2, 4}, "#006985"},
	"Ag": {47, []int{1}, "#C0C0C0"},
	"Cd": {48, []int{2}, "#FFD98F"},
	"Sn": {50, []int{2, 4}, "#668080"},
	"Sb": {51, []int{3, 5}, "#9E63B5"},
	"Te": {52, []int{2, 4, 6}, "#D47A00"},
	"I":  {53, []int{1}, "#940094"},
	"Xe": {54, []int{0}, "#429EB0"},
	"Ba": {56, []int{2}, "#00C900"},
	"W":  {74, []int{4, 6}, "#2194D6"},
	"Pt": {78, []int{2, 4}, "#D0D0E0"},
	"Au": {79, []int{1, 3}, "#FFD123"},
	"Hg": {80, []int{1, 2}, "#B8B8D0"},
	"Pb": {82, []int{2, 4}, "#575961"},
	"Bi": {83, []int{3, 5}, "#9E4FB5"},
}

// LookupElement returns the table entry for a symbol. The boolean is false
// for symbols the table does not know, including the wildcard "*".
func LookupElement(symbol string) (Element, bool) {
	e, ok := elements[symbol]
	return e, ok
}

// AtomicNumber returns the atomic number of a symbol, or 0 when unknown.
// Unknown symbols sort below every real element in priority walks.
func AtomicNumber(symbol string) int {
	return elements[symbol].Number
}
