package service

import (
	"errors"
	"fmt"
	"sort"

	"mapa-service/internal/importer/model"
)

var ErrUnknownFlow = errors.New("unknown import flow")

// RefKind selects which stored names a flow's match key is compared to.
type RefKind int

const (
	RefCityName RefKind = iota
	RefMayorName
)

// TemplateColumn is one column of the downloadable template.
type TemplateColumn struct {
	Header  string
	Example string
}

// Flow is the static description of one import flow. Flows are shared
// package values and must not be modified.
type Flow struct {
	Name  model.FlowName
	Title string

	synonyms map[string]model.Field

	FileRequired []model.Field // at least one column each, or the file is rejected
	RowRequired  []model.Field
	Numeric      map[model.Field]bool

	IDField    model.Field // "" when rows carry no identifier
	GenerateID bool

	MatchKey       model.Field
	RefKind        RefKind
	WriteUnmatched bool // unmatched rows are still written (with no resolved id)

	Template []TemplateColumn
}

// Lookup resolves a cleaned header label.
func (f *Flow) Lookup(label string) (model.Field, bool) {
	v, ok := f.synonyms[label]
	return v, ok
}

// Knows reports whether field belongs to the flow's vocabulary.
func (f *Flow) Knows(field model.Field) bool {
	for _, v := range f.synonyms {
		if v == field {
			return true
		}
	}
	return false
}

// Vocabulary lists the canonical fields the flow can produce, sorted.
func (f *Flow) Vocabulary() []model.Field {
	seen := make(map[model.Field]struct{})
	for _, v := range f.synonyms {
		seen[v] = struct{}{}
	}
	out := make([]model.Field, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	contactSynonyms = map[string]model.Field{
		"telefone": model.FieldPhone,
		"fone":     model.FieldPhone,
		"celular":  model.FieldPhone,
		"whatsapp": model.FieldPhone,
		"email":    model.FieldEmail,
		"e-mail":   model.FieldEmail,
	}
	citySynonyms = map[string]model.Field{
		"cidade":    model.FieldCity,
		"municipio": model.FieldCity,
		"município": model.FieldCity,
	}
)

func table(parts ...map[string]model.Field) map[string]model.Field {
	out := make(map[string]model.Field)
	for _, p := range parts {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

func fieldSet(fs ...model.Field) map[model.Field]bool {
	out := make(map[model.Field]bool, len(fs))
	for _, f := range fs {
		out[f] = true
	}
	return out
}

var flowCities = &Flow{
	Name:  model.FlowCities,
	Title: "Cidades",
	synonyms: map[string]model.Field{
		"id":                model.FieldID,
		"uuid":              model.FieldID,
		"nome":              model.FieldName,
		"cidade":            model.FieldName,
		"municipio":         model.FieldName,
		"município":         model.FieldName,
		"nome do municipio": model.FieldName,
		"nome_municipio":    model.FieldName,
		"ibge":              model.FieldIBGECode,
		"codigo ibge":       model.FieldIBGECode,
		"código ibge":       model.FieldIBGECode,
		"cod ibge":          model.FieldIBGECode,
		"codigo_ibge":       model.FieldIBGECode,
		"cod_ibge":          model.FieldIBGECode,
		"prefeito":          model.FieldMayor,
		"prefeita":          model.FieldMayor,
		"prefeito(a)":       model.FieldMayor,
		"nome do prefeito":  model.FieldMayor,
		"vice":              model.FieldViceMayor,
		"vice prefeito":     model.FieldViceMayor,
		"vice-prefeito":     model.FieldViceMayor,
		"vice_prefeito":     model.FieldViceMayor,
		"partido":           model.FieldParty,
		"sigla":             model.FieldParty,
		"partido prefeito":  model.FieldParty,
		"populacao":         model.FieldPopulation,
		"população":         model.FieldPopulation,
		"habitantes":        model.FieldPopulation,
		"eleitores":         model.FieldVoters,
		"eleitorado":        model.FieldVoters,
		"votos validos":     model.FieldValidVotes,
		"votos válidos":     model.FieldValidVotes,
		"votos_validos":     model.FieldValidVotes,
		"status":            model.FieldStatus,
		"situacao":          model.FieldStatus,
		"situação":          model.FieldStatus,
		"regiao":            model.FieldRegion,
		"região":            model.FieldRegion,
		"microrregiao":      model.FieldRegion,
	},
	FileRequired:   []model.Field{model.FieldName},
	RowRequired:    []model.Field{model.FieldName},
	Numeric:        fieldSet(model.FieldIBGECode, model.FieldPopulation, model.FieldVoters, model.FieldValidVotes),
	IDField:        model.FieldID,
	GenerateID:     true,
	MatchKey:       model.FieldName,
	RefKind:        RefCityName,
	WriteUnmatched: true,
	Template: []TemplateColumn{
		{"id", ""},
		{"nome", "Joinville"},
		{"codigo_ibge", "4209102"},
		{"prefeito", "Adriano Silva"},
		{"vice_prefeito", "Rejane Gambin"},
		{"partido", "NOVO"},
		{"populacao", "616.317"},
		{"eleitores", "433.000"},
		{"votos_validos", "310.500"},
		{"status", "aliado"},
		{"regiao", "Norte"},
	},
}

var flowCouncil = &Flow{
	Name:  model.FlowCouncil,
	Title: "Vereadores",
	synonyms: table(contactSynonyms, citySynonyms, map[string]model.Field{
		"nome":             model.FieldName,
		"vereador":         model.FieldName,
		"vereadora":        model.FieldName,
		"vereador(a)":      model.FieldName,
		"nome do vereador": model.FieldName,
		"candidato":        model.FieldName,
		"cidade_id":        model.FieldCity,
		"id_cidade":        model.FieldCity,
		"partido":          model.FieldParty,
		"sigla":            model.FieldParty,
		"votos":            model.FieldVotes,
		"votacao":          model.FieldVotes,
		"votação":          model.FieldVotes,
		"situacao":         model.FieldElected,
		"situação":         model.FieldElected,
		"eleito":           model.FieldElected,
	}),
	FileRequired: []model.Field{model.FieldName},
	RowRequired:  []model.Field{model.FieldName, model.FieldCity},
	Numeric:      fieldSet(model.FieldVotes),
	MatchKey:     model.FieldCity,
	RefKind:      RefCityName,
	Template: []TemplateColumn{
		{"nome", "Maria Souza"},
		{"cidade", "Joinville"},
		{"partido", "PSD"},
		{"votos", "4.215"},
		{"telefone", "(47) 99999-0000"},
		{"email", "maria@camara.sc.gov.br"},
		{"situacao", "eleito"},
	},
}

var flowElection = &Flow{
	Name:  model.FlowElection,
	Title: "Resultado eleitoral",
	synonyms: table(citySynonyms, map[string]model.Field{
		"candidato":         model.FieldName,
		"nome":              model.FieldName,
		"nome do candidato": model.FieldName,
		"nome urna":         model.FieldName,
		"nome_urna":         model.FieldName,
		"cargo":             model.FieldPosition,
		"funcao":            model.FieldPosition,
		"função":            model.FieldPosition,
		"partido":           model.FieldParty,
		"sigla":             model.FieldParty,
		"votos":             model.FieldVotes,
		"votacao":           model.FieldVotes,
		"votação":           model.FieldVotes,
		"votos nominais":    model.FieldVotes,
		"votos validos":     model.FieldValidVotes,
		"votos válidos":     model.FieldValidVotes,
		"votos_validos":     model.FieldValidVotes,
		"situacao":          model.FieldElected,
		"situação":          model.FieldElected,
		"resultado":         model.FieldElected,
		"eleito":            model.FieldElected,
	}),
	FileRequired: []model.Field{model.FieldCity, model.FieldName},
	RowRequired:  []model.Field{model.FieldCity, model.FieldName},
	Numeric:      fieldSet(model.FieldVotes, model.FieldValidVotes),
	MatchKey:     model.FieldCity,
	RefKind:      RefCityName,
	Template: []TemplateColumn{
		{"municipio", "Joinville"},
		{"candidato", "Adriano Silva"},
		{"cargo", "Prefeito"},
		{"partido", "NOVO"},
		{"votos", "180.402"},
		{"votos_validos", "310.500"},
		{"situacao", "eleito"},
	},
}

var flowVotes = &Flow{
	Name:  model.FlowVotes,
	Title: "Votos válidos",
	synonyms: table(citySynonyms, map[string]model.Field{
		"prefeito":               model.FieldMayor,
		"prefeita":               model.FieldMayor,
		"prefeito(a)":            model.FieldMayor,
		"nome do prefeito":       model.FieldMayor,
		"candidato":              model.FieldMayor,
		"nome":                   model.FieldMayor,
		"votos validos":          model.FieldValidVotes,
		"votos válidos":          model.FieldValidVotes,
		"votos_validos":          model.FieldValidVotes,
		"validos":                model.FieldValidVotes,
		"votos":                  model.FieldValidVotes,
		"total de votos validos": model.FieldValidVotes,
	}),
	FileRequired: []model.Field{model.FieldMayor, model.FieldValidVotes},
	RowRequired:  []model.Field{model.FieldMayor, model.FieldValidVotes},
	Numeric:      fieldSet(model.FieldValidVotes),
	MatchKey:     model.FieldMayor,
	RefKind:      RefMayorName,
	Template: []TemplateColumn{
		{"prefeito", "Adriano Silva"},
		{"municipio", "Joinville"},
		{"votos_validos", "310.500"},
	},
}

var flowPress = &Flow{
	Name:  model.FlowPress,
	Title: "Imprensa",
	synonyms: table(contactSynonyms, citySynonyms, map[string]model.Field{
		"nome":            model.FieldName,
		"veiculo":         model.FieldName,
		"veículo":         model.FieldName,
		"nome do veiculo": model.FieldName,
		"jornal":          model.FieldName,
		"tipo":            model.FieldKind,
		"midia":           model.FieldKind,
		"mídia":           model.FieldKind,
		"site":            model.FieldWebsite,
		"website":         model.FieldWebsite,
		"url":             model.FieldWebsite,
	}),
	FileRequired:   []model.Field{model.FieldName},
	RowRequired:    []model.Field{model.FieldName},
	Numeric:        fieldSet(),
	MatchKey:       model.FieldCity,
	RefKind:        RefCityName,
	WriteUnmatched: true,
	Template: []TemplateColumn{
		{"nome", "A Notícia"},
		{"tipo", "jornal"},
		{"cidade", "Joinville"},
		{"telefone", "(47) 3333-0000"},
		{"email", "redacao@an.com.br"},
		{"site", "https://an.com.br"},
	},
}

var flowContacts = &Flow{
	Name:  model.FlowContacts,
	Title: "Contatos empresariais",
	synonyms: table(contactSynonyms, citySynonyms, map[string]model.Field{
		"nome":         model.FieldName,
		"contato":      model.FieldName,
		"responsavel":  model.FieldName,
		"responsável":  model.FieldName,
		"empresa":      model.FieldCompany,
		"cooperativa":  model.FieldCompany,
		"razao social": model.FieldCompany,
		"razão social": model.FieldCompany,
		"organizacao":  model.FieldCompany,
		"cargo":        model.FieldRole,
		"funcao":       model.FieldRole,
		"função":       model.FieldRole,
	}),
	FileRequired:   []model.Field{model.FieldName},
	RowRequired:    []model.Field{model.FieldName},
	Numeric:        fieldSet(),
	MatchKey:       model.FieldCity,
	RefKind:        RefCityName,
	WriteUnmatched: true,
	Template: []TemplateColumn{
		{"nome", "João Pereira"},
		{"empresa", "Cooperativa Agroindustrial Alfa"},
		{"cargo", "Presidente"},
		{"cidade", "Chapecó"},
		{"telefone", "(49) 3321-0000"},
		{"email", "contato@alfa.coop.br"},
	},
}

var flows = map[model.FlowName]*Flow{
	flowCities.Name:   flowCities,
	flowCouncil.Name:  flowCouncil,
	flowElection.Name: flowElection,
	flowVotes.Name:    flowVotes,
	flowPress.Name:    flowPress,
	flowContacts.Name: flowContacts,
}

// FlowByName returns the flow registered under name.
func FlowByName(name string) (*Flow, error) {
	f, ok := flows[model.FlowName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
	return f, nil
}

// Flows returns every flow ordered by name.
func Flows() []*Flow {
	out := make([]*Flow, 0, len(flows))
	for _, f := range flows {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
