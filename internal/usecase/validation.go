package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

type ValidationMode int

const (
	ModeCreate ValidationMode = iota + 1
	ModeUpdate
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UTMParams são os campos de atribuição de campanha.
type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
	Content  string
	Term     string
}

// ValidatedLead é o registro normalizado de uma criação.
type ValidatedLead struct {
	Name        string
	Email       string
	WhatsApp    string
	Role        string
	LGPDConsent bool
	UTM         UTMParams
}

// Formato (DD) DDDD[D]-DDDD, com espaço e hífen opcionais.
var whatsappPattern = regexp.MustCompile(`^\((\d{2})\)\s?(\d{4,5})-?(\d{4})$`)

// leadFieldOrder define a ordem dos erros devolvidos e a allow-list de campos.
var leadFieldOrder = []string{
	"name", "email", "whatsapp", "role", "lgpd_consent",
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
}

var fieldLabels = map[string]string{
	"name":         "Nome",
	"email":        "Email",
	"whatsapp":     "WhatsApp",
	"role":         "Cargo",
	"lgpd_consent": "Consentimento LGPD",
	"page":         "page",
	"limit":        "limit",
	"orderBy":      "orderBy",
	"order":        "order",
}

type createRules struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	WhatsApp    string `json:"whatsapp" validate:"omitempty,max=20,br_whatsapp"`
	Role        string `json:"role" validate:"omitempty,max=255"`
	LGPDConsent bool   `json:"lgpd_consent" validate:"accepted"`
	UTMSource   string `json:"utm_source" validate:"omitempty,max=100"`
	UTMMedium   string `json:"utm_medium" validate:"omitempty,max=100"`
	UTMCampaign string `json:"utm_campaign" validate:"omitempty,max=100"`
	UTMContent  string `json:"utm_content" validate:"omitempty,max=100"`
	UTMTerm     string `json:"utm_term" validate:"omitempty,max=100"`
}

// No update, nome e email só são validados quando enviados (omitnil); string vazia enviada é erro.
type updateRules struct {
	Name        *string `json:"name" validate:"omitnil,required,min=2,max=255"`
	Email       *string `json:"email" validate:"omitnil,required,email,max=255"`
	WhatsApp    string  `json:"whatsapp" validate:"omitempty,max=20,br_whatsapp"`
	Role        string  `json:"role" validate:"omitempty,max=255"`
	UTMSource   string  `json:"utm_source" validate:"omitempty,max=100"`
	UTMMedium   string  `json:"utm_medium" validate:"omitempty,max=100"`
	UTMCampaign string  `json:"utm_campaign" validate:"omitempty,max=100"`
	UTMContent  string  `json:"utm_content" validate:"omitempty,max=100"`
	UTMTerm     string  `json:"utm_term" validate:"omitempty,max=100"`
}

type listQueryRules struct {
	Page    int    `json:"page" validate:"min=1"`
	Limit   int    `json:"limit" validate:"min=1,max=100"`
	OrderBy string `json:"orderBy" validate:"oneof=created_at name email updated_at"`
	Order   string `json:"order" validate:"oneof=asc desc"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Erros usam o nome do campo no JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("br_whatsapp", func(fl validator.FieldLevel) bool {
		return whatsappPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("accepted", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
	})

	return v
}

// ValidateLead valida um payload bruto no modo pedido. Devolve o registro normalizado
// (create) ou o patch (update), ou a lista completa de erros; nunca os dois.
func ValidateLead(raw map[string]any, mode ValidationMode) (*ValidatedLead, *entity.LeadPatch, []ValidationError) {
	if mode == ModeUpdate {
		patch, errs := ValidateUpdateLead(raw)
		return nil, patch, errs
	}
	lead, errs := ValidateCreateLead(raw)
	return lead, nil, errs
}

func ValidateCreateLead(raw map[string]any) (*ValidatedLead, []ValidationError) {
	fields, _, errs := extractStringFields(raw)

	consent, ok := raw["lgpd_consent"].(bool)
	if v, present := raw["lgpd_consent"]; present && v != nil && !ok {
		errs = append(errs, ValidationError{
			Field:   "lgpd_consent",
			Message: label("lgpd_consent") + " deve ser verdadeiro ou falso",
			Code:    "type",
		})
	}

	rules := createRules{
		Name:        fields["name"],
		Email:       fields["email"],
		WhatsApp:    fields["whatsapp"],
		Role:        fields["role"],
		LGPDConsent: consent,
		UTMSource:   fields["utm_source"],
		UTMMedium:   fields["utm_medium"],
		UTMCampaign: fields["utm_campaign"],
		UTMContent:  fields["utm_content"],
		UTMTerm:     fields["utm_term"],
	}

	errs = mergeErrors(errs, validate.Struct(&rules))
	if len(errs) > 0 {
		return nil, orderErrors(errs, leadFieldOrder)
	}

	return &ValidatedLead{
		Name:        rules.Name,
		Email:       rules.Email,
		WhatsApp:    canonicalWhatsApp(rules.WhatsApp),
		Role:        rules.Role,
		LGPDConsent: true,
		UTM: UTMParams{
			Source:   rules.UTMSource,
			Medium:   rules.UTMMedium,
			Campaign: rules.UTMCampaign,
			Content:  rules.UTMContent,
			Term:     rules.UTMTerm,
		},
	}, nil
}

func ValidateUpdateLead(raw map[string]any) (*entity.LeadPatch, []ValidationError) {
	fields, present, errs := extractStringFields(raw)

	rules := updateRules{
		WhatsApp:    fields["whatsapp"],
		Role:        fields["role"],
		UTMSource:   fields["utm_source"],
		UTMMedium:   fields["utm_medium"],
		UTMCampaign: fields["utm_campaign"],
		UTMContent:  fields["utm_content"],
		UTMTerm:     fields["utm_term"],
	}
	if present["name"] {
		name := fields["name"]
		rules.Name = &name
	}
	if present["email"] {
		email := fields["email"]
		rules.Email = &email
	}

	errs = mergeErrors(errs, validate.Struct(&rules))
	if len(errs) > 0 {
		return nil, orderErrors(errs, leadFieldOrder)
	}

	patch := &entity.LeadPatch{
		Name:  rules.Name,
		Email: rules.Email,
	}
	optional := func(key, value string) *string {
		if !present[key] {
			return nil
		}
		return &value
	}
	patch.WhatsApp = optional("whatsapp", canonicalWhatsApp(rules.WhatsApp))
	patch.Role = optional("role", rules.Role)
	patch.UTMSource = optional("utm_source", rules.UTMSource)
	patch.UTMMedium = optional("utm_medium", rules.UTMMedium)
	patch.UTMCampaign = optional("utm_campaign", rules.UTMCampaign)
	patch.UTMContent = optional("utm_content", rules.UTMContent)
	patch.UTMTerm = optional("utm_term", rules.UTMTerm)

	return patch, nil
}

// ValidateListQuery aplica defaults e valida os parâmetros de listagem.
func ValidateListQuery(values url.Values) (entity.ListQuery, []ValidationError) {
	rules := listQueryRules{
		Page:    1,
		Limit:   50,
		OrderBy: entity.OrderByCreatedAt,
		Order:   "desc",
	}

	var errs []ValidationError
	parseInt := func(key string, dst *int) {
		v := strings.TrimSpace(values.Get(key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: key, Message: key + " deve ser um número inteiro", Code: "type"})
			*dst = 1
			return
		}
		*dst = n
	}
	parseInt("page", &rules.Page)
	parseInt("limit", &rules.Limit)

	if v := strings.TrimSpace(values.Get("orderBy")); v != "" {
		rules.OrderBy = v
	}
	if v := strings.ToLower(strings.TrimSpace(values.Get("order"))); v != "" {
		rules.Order = v
	}

	errs = mergeErrors(errs, validate.Struct(&rules))
	if len(errs) > 0 {
		return entity.ListQuery{}, orderErrors(errs, []string{"page", "limit", "orderBy", "order"})
	}

	return entity.ListQuery{
		Page:    rules.Page,
		Limit:   rules.Limit,
		OrderBy: rules.OrderBy,
		Order:   rules.Order,
	}, nil
}

// NormalizeEmail aplica a mesma normalização da validação (trim + minúsculas).
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeWhatsApp devolve o número no formato canônico "(DD) NNNNN-NNNN" quando ele é válido.
func NormalizeWhatsApp(whatsapp string) string {
	return canonicalWhatsApp(strings.TrimSpace(whatsapp))
}

func canonicalWhatsApp(v string) string {
	m := whatsappPattern.FindStringSubmatch(v)
	if m == nil {
		return v
	}
	return fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3])
}

// extractStringFields lê os campos texto da allow-list. Valores que não são string geram erro de tipo
// e o campo fica de fora da validação por regra.
func extractStringFields(raw map[string]any) (map[string]string, map[string]bool, []ValidationError) {
	fields := make(map[string]string, len(leadFieldOrder))
	present := make(map[string]bool, len(leadFieldOrder))
	var errs []ValidationError

	for _, key := range leadFieldOrder {
		if key == "lgpd_consent" {
			continue
		}
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   key,
				Message: label(key) + " deve ser um texto",
				Code:    "type",
			})
			continue
		}
		s = strings.TrimSpace(s)
		if key == "email" {
			s = strings.ToLower(s)
		}
		fields[key] = s
		present[key] = true
	}

	return fields, present, errs
}

// mergeErrors junta os erros de tipo com os do validator, mantendo um erro por campo.
func mergeErrors(errs []ValidationError, err error) []ValidationError {
	if err == nil {
		return errs
	}

	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		seen[e.Field] = true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(errs, ValidationError{Field: "_", Message: err.Error(), Code: "invalid"})
	}

	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Code:    validationCode(fe.Tag()),
		})
	}
	return errs
}

func orderErrors(errs []ValidationError, order []string) []ValidationError {
	pos := make(map[string]int, len(order))
	for i, f := range order {
		pos[f] = i
	}
	out := make([]ValidationError, 0, len(errs))
	for _, f := range order {
		for _, e := range errs {
			if e.Field == f {
				out = append(out, e)
			}
		}
	}
	for _, e := range errs {
		if _, ok := pos[e.Field]; !ok {
			out = append(out, e)
		}
	}
	return out
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func validationCode(tag string) string {
	switch tag {
	case "br_whatsapp":
		return "pattern"
	case "oneof":
		return "enum"
	default:
		return tag
	}
}

func validationMessage(fe validator.FieldError) string {
	l := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return l + " é obrigatório"
	case "email":
		return "Email deve ter um formato válido"
	case "min":
		if fe.Kind() == reflect.String {
			return l + " deve ter pelo menos " + fe.Param() + " caracteres"
		}
		return l + " deve ser no mínimo " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return l + " deve ter no máximo " + fe.Param() + " caracteres"
		}
		return l + " deve ser no máximo " + fe.Param()
	case "br_whatsapp":
		return "WhatsApp deve ter um formato válido (ex: (11) 99999-9999)"
	case "accepted":
		return "Consentimento LGPD é obrigatório"
	case "oneof":
		return l + " deve ser um de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return l + " é inválido"
	}
}
