package translate

import "strings"

// Prompt template placeholders.
const (
	PlaceholderLang     = "{lang}"
	PlaceholderSep      = "{sep}"
	PlaceholderLangName = "{lang_name}"
)

// DefaultPromptTemplate is written by "csvtrans prompt init".
const DefaultPromptTemplate = `You are a professional translator specializing in software and game localization. You are translating UI strings from English into {lang_name} (language code: {lang}).

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in the target language, not word-for-word
- Use terminology that is standard for software in {lang_name}
- Keep the original tone, keep brand names and proper nouns unchanged

TECHNICAL REQUIREMENTS:
- The input is a list of strings separated by the "{sep}" character.
- Return ONLY the translated strings, separated by the same "{sep}" character, in the same order.
- The number of strings in your answer MUST equal the number of strings in the input.
- Never use the "{sep}" character inside a translation.
- Preserve all format specifiers exactly as-is (%s, %d, {0}, {name}, etc.).
- Preserve leading/trailing whitespace, newlines, and punctuation patterns.
- Do NOT add explanations, numbering, quotes or markdown code blocks.`

// RenderPrompt substitutes the target language and delimiter into a
// prompt template.
func RenderPrompt(template, lang, langName, delimiter string) string {
	if langName == "" {
		langName = lang
	}
	return strings.NewReplacer(
		PlaceholderLangName, langName,
		PlaceholderLang, lang,
		PlaceholderSep, delimiter,
	).Replace(template)
}
