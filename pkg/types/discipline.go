// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CorpusExt is the file extension of a discipline corpus.
const CorpusExt = ".jsonl.gz"

// Discipline identifies one academic field: the unit of partitioning for
// input files and output statistics.
type Discipline struct {
	// Name is the file stem of the discipline corpus (e.g. "ComputerScience").
	Name string `json:"name" yaml:"name"`

	// DisplayName keys the statistics artifact (e.g. "Computer Science").
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// FileName returns the corpus file name for d.
func (d Discipline) FileName() string {
	return d.Name + CorpusExt
}

// Disciplines is the fixed enumeration of corpora, in output order.
var Disciplines = []Discipline{
	{Name: "AgriculturalAndFoodSciences", DisplayName: "Agricultural and Food Sciences"},
	{Name: "Biology", DisplayName: "Biology"},
	{Name: "Chemistry", DisplayName: "Chemistry"},
	{Name: "ComputerScience", DisplayName: "Computer Science"},
	{Name: "Economics", DisplayName: "Economics"},
	{Name: "Engineering", DisplayName: "Engineering"},
	{Name: "EnvironmentalScience", DisplayName: "Environmental Science"},
	{Name: "Mathematics", DisplayName: "Mathematics"},
	{Name: "Medicine", DisplayName: "Medicine"},
	{Name: "Physics", DisplayName: "Physics"},
	{Name: "PoliticalScience", DisplayName: "Political Science"},
	{Name: "Psychology", DisplayName: "Psychology"},
}

// LookupDiscipline finds a discipline by file stem or display name.
func LookupDiscipline(name string) (Discipline, bool) {
	for _, d := range Disciplines {
		if d.Name == name || d.DisplayName == name {
			return d, true
		}
	}
	return Discipline{}, false
}
