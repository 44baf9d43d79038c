package questionnaire

// ItemCount is the number of GAD-7 items.
const ItemCount = 7

// Question binds one request field to the feature column the classifier
// was trained on.
type Question struct {
	FieldID string `json:"field_id"`
	Feature string `json:"feature"`
}

// Schema is the ordered question list shared by the normalizer and the
// classifier adapters. The order is the classifier's column order.
type Schema struct {
	questions [ItemCount]Question
	vocab     *Vocabulary
}

var gad7 = &Schema{
	questions: [ItemCount]Question{
		{FieldID: "merasa_gugup_cemas_atau_gelisah", Feature: "Merasa gugup, cemas, atau gelisah"},
		{FieldID: "tidak_dapat_menghentikan_kekhawatiran", Feature: "Tidak dapat menghentikan kekhawatiran"},
		{FieldID: "banyak_mengkhawatirkan_berbagai_hal", Feature: "Banyak mengkhawatirkan berbagai hal"},
		{FieldID: "sulit_merasa_santai", Feature: "Sulit merasa santai"},
		{FieldID: "sangat_gelisah_sehingga_sulit_untuk_diam", Feature: "Sangat gelisah sehingga sulit untuk diam"},
		{FieldID: "mudah_tersinggung_dan_mudah_marah", Feature: "Mudah tersinggung dan mudah marah"},
		{FieldID: "merasa_takut_seolah_olah_sesuatu_buruk_akan_terjadi", Feature: "Merasa takut seolah-olah sesuatu buruk akan terjadi"},
	},
	vocab: defaultVocabulary,
}

// GAD7 returns the process-wide GAD-7 schema.
func GAD7() *Schema { return gad7 }

// Questions returns a copy of the questions in column order.
func (s *Schema) Questions() []Question {
	out := make([]Question, ItemCount)
	copy(out, s.questions[:])
	return out
}

// FieldIDs returns the request field ids in column order.
func (s *Schema) FieldIDs() []string {
	out := make([]string, ItemCount)
	for i, q := range s.questions {
		out[i] = q.FieldID
	}
	return out
}

// FeatureNames returns the canonical feature names in column order.
func (s *Schema) FeatureNames() []string {
	out := make([]string, ItemCount)
	for i, q := range s.questions {
		out[i] = q.Feature
	}
	return out
}

// Vocabulary returns the answer vocabulary the schema normalizes against.
func (s *Schema) Vocabulary() *Vocabulary { return s.vocab }
