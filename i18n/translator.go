package i18n

import "strings"

// Translator retrieves localized messages for validation codes.
// data provides optional values to embed in the message (for example,
// "name" for an analytics variable).
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "required":
			msg = "この項目は必須です。"
		case "invalid_integer":
			msg = "値は整数またはデータ要素である必要があります。"
		case "invalid_number":
			msg = "値は数値またはデータ要素である必要があります。"
		case "invalid_boolean":
			msg = "値は true、false、またはデータ要素である必要があります。"
		case "invalid_enum":
			msg = "値は許可された値のいずれか、またはデータ要素である必要があります。"
		case "data_element_required":
			msg = "値はデータ要素である必要があります。"
		case "invalid_json":
			msg = "有効な JSON またはデータ要素を入力してください。"
		case "duplicate_key":
			msg = "キー {key} が重複しています。"
		case "schema_mismatch":
			msg = "値がスキーマに適合しません。"
		case "invalid_analytics_key":
			msg = "{name} は有効な Analytics 変数名ではありません。"
		case "editor_not_ready":
			msg = "エディターの準備ができていません。"
		}
	default: // "en"
		switch code {
		case "required":
			msg = "This field is required."
		case "invalid_integer":
			msg = "Value must be an integer or data element."
		case "invalid_number":
			msg = "Value must be a number or data element."
		case "invalid_boolean":
			msg = "Value must be true, false, or a data element."
		case "invalid_enum":
			msg = "Value must be one of the allowed values or a data element."
		case "data_element_required":
			msg = "Value must be a data element."
		case "invalid_json":
			msg = "Please enter valid JSON or a data element."
		case "duplicate_key":
			msg = "Key {key} is duplicated."
		case "schema_mismatch":
			msg = "Value does not match the schema."
		case "invalid_analytics_key":
			msg = "{name} is not a valid Analytics variable."
		case "editor_not_ready":
			msg = "The editor is not ready."
		}
	}
	if msg == "" {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
