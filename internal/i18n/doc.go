// Package i18n loads UI translations from one JSON file per language.
package i18n
