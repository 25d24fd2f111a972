package stem

// GradeRule is one row of a species' grading table: a log whose top DIB and
// length both reach the minimums takes the grade
type GradeRule struct {
	MinTopDIB int
	MinLength int
	Grade     string
}

// gradeRules lists each species' rules from the best grade down. The last
// rule is the catch-all utility grade.
var gradeRules = map[string][]GradeRule{
	"DF": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"WH": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"RC": {{28, 16, "S1"}, {20, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"SS": {{24, 12, "S1"}, {20, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"ES": {{24, 17, "P3"}, {20, 16, "S1"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"SF": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"GF": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"NF": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"WL": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"WP": {{24, 17, "P3"}, {20, 16, "S1"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"PP": {{24, 12, "S2"}, {20, 16, "S3"}, {12, 12, "S4"}, {6, 1, "S5"}, {5, 1, "S6"}, {1, 1, "UT"}},
	"LP": {{24, 17, "P3"}, {20, 16, "S1"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"JP": {{24, 12, "S2"}, {20, 16, "S3"}, {12, 12, "S4"}, {6, 1, "S5"}, {5, 1, "S6"}, {1, 1, "UT"}},
	"SP": {{24, 12, "S2"}, {20, 16, "S3"}, {12, 12, "S4"}, {6, 1, "S5"}, {5, 1, "S6"}, {1, 1, "UT"}},
	"WF": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"RF": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"RW": {{24, 17, "P3"}, {16, 17, "SM"}, {12, 12, "S2"}, {6, 1, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"IC": {{24, 12, "S2"}, {20, 16, "S3"}, {12, 12, "S4"}, {6, 1, "S5"}, {5, 1, "S6"}, {1, 1, "UT"}},
	"RA": {{16, 8, "S1"}, {12, 8, "S2"}, {10, 8, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"BM": {{16, 8, "S1"}, {12, 8, "S2"}, {10, 8, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"CW": {{24, 8, "P3"}, {10, 8, "S1"}, {6, 8, "S2"}, {5, 1, "S4"}, {1, 1, "UT"}},
	"AS": {{16, 8, "S1"}, {12, 8, "S2"}, {10, 8, "S3"}, {5, 1, "S4"}, {1, 1, "UT"}},
}

// GradeNames maps grade codes to their scaling-bureau names
var GradeNames = map[string]string{
	"PL": "POLE",
	"P1": "PEELER 1",
	"P2": "PEELER 2",
	"P3": "PEELER 3",
	"SM": "SPECIAL MILL",
	"S1": "SAW 1",
	"S2": "SAW 2",
	"S3": "SAW 3",
	"S4": "SAW 4",
	"S5": "SAW 5",
	"S6": "SAW 6",
	"UT": "UTILITY PULP",
	"CR": "CAMP RUN",
}

// gradeOrder sorts grade codes from highest value to lowest
var gradeOrder = map[string]int{
	"PL": 0, "P1": 1, "P2": 2, "P3": 3, "SM": 4, "S1": 5, "S2": 6,
	"S3": 7, "S4": 8, "S5": 9, "S6": 10, "UT": 11, "CR": 12,
}

// GradeOrder returns the sort position of a grade code; unknown codes sort last
func GradeOrder(grade string) int {
	if i, ok := gradeOrder[grade]; ok {
		return i
	}
	return len(gradeOrder)
}

// LengthRange is a named band of log lengths, inclusive at both ends
type LengthRange struct {
	Label    string
	Min, Max int
}

// LengthRanges are the log length bands used in log summaries, shortest first
var LengthRanges = []LengthRange{
	{"<= 10 feet", 1, 10},
	{"11 - 20 feet", 11, 20},
	{"21 - 30 feet", 21, 30},
	{"31 - 40 feet", 31, 40},
	{"> 40 feet", 41, 999},
}

// scribnerFactors holds board feet per foot of log length, indexed by top
// DIB. DIBs 6 through 11 carry three factors for logs under 16 ft, 16 to
// 31 ft and 32 ft or longer.
var scribnerFactors = [][]float64{
	0:   {0},
	1:   {0},
	2:   {0.143},
	3:   {0.39},
	4:   {0.676},
	5:   {1.07},
	6:   {1.16, 1.249, 1.57},
	7:   {1.4, 1.608, 1.8},
	8:   {1.501, 1.854, 2.2},
	9:   {2.084, 2.41, 2.9},
	10:  {3.126, 3.542, 3.815},
	11:  {3.749, 4.167, 4.499},
	12:  {4.9},
	13:  {6.043},
	14:  {7.14},
	15:  {8.88},
	16:  {10},
	17:  {11.528},
	18:  {13.29},
	19:  {14.99},
	20:  {17.499},
	21:  {18.99},
	22:  {20.88},
	23:  {23.51},
	24:  {25.218},
	25:  {28.677},
	26:  {31.249},
	27:  {34.22},
	28:  {36.376},
	29:  {38.04},
	30:  {41.06},
	31:  {44.376},
	32:  {45.975},
	33:  {48.99},
	34:  {50},
	35:  {54.688},
	36:  {57.66},
	37:  {64.319},
	38:  {66.731},
	39:  {70},
	40:  {75.24},
	41:  {79.48},
	42:  {83.91},
	43:  {87.19},
	44:  {92.501},
	45:  {94.99},
	46:  {99.075},
	47:  {103.501},
	48:  {107.97},
	49:  {112.292},
	50:  {116.99},
	51:  {121.65},
	52:  {126.525},
	53:  {131.51},
	54:  {136.51},
	55:  {141.61},
	56:  {146.912},
	57:  {152.21},
	58:  {157.71},
	59:  {163.288},
	60:  {168.99},
	61:  {174.85},
	62:  {180.749},
	63:  {186.623},
	64:  {193.17},
	65:  {199.12},
	66:  {205.685},
	67:  {211.81},
	68:  {218.501},
	69:  {225.685},
	70:  {232.499},
	71:  {239.317},
	72:  {246.615},
	73:  {254.04},
	74:  {261.525},
	75:  {269.04},
	76:  {276.63},
	77:  {284.26},
	78:  {292.5},
	79:  {300.655},
	80:  {308.97},
	81:  {317.36},
	82:  {325.79},
	83:  {334.217},
	84:  {343.29},
	85:  {350.785},
	86:  {359.12},
	87:  {368.38},
	88:  {376.61},
	89:  {385.135},
	90:  {393.98},
	91:  {402.499},
	92:  {410.834},
	93:  {419.166},
	94:  {428.38},
	95:  {437.499},
	96:  {446.565},
	97:  {455.01},
	98:  {464.15},
	99:  {473.43},
	100: {482.49},
	101: {491.7},
	102: {501.7},
	103: {511.7},
	104: {521.7},
	105: {531.7},
	106: {541.7},
	107: {552.499},
	108: {562.501},
	109: {573.35},
	110: {583.35},
	111: {594.15},
	112: {604.17},
	113: {615.01},
	114: {625.89},
	115: {636.66},
	116: {648.38},
	117: {660},
	118: {671.7},
	119: {683.33},
	120: {695.011},
}
