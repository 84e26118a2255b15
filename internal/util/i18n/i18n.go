// Package i18n is the lookup point for user-facing command text. storectl
// ships English only, so T returns the inline default.
package i18n

// T returns the text for key. The key names the message (for example
// "root.verbs.list.listShort"); defaultValue is the English text, used as is.
// An empty default yields the key so a missing string is visible in help.
func T(key string, defaultValue string) string {
	if defaultValue == "" {
		return key
	}
	return defaultValue
}
