package main

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

const (
	componentAnnotationTag = "@component"
	abstractAnnotationTag  = "@abstract"
	injectAnnotationTag    = "@inject"
)

var (
	propertiesRegexp = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|([\w.\-]+))`)

	knownComponentProperties = []string{"named"}
	knownInjectProperties    = []string{"named", "default"}
)

type (
	// TypeAnnotation is the annotation found in the doc of a function or a type.
	TypeAnnotation struct {
		description string
		properties  map[string]string
	}

	// InjectAnnotation is the annotation commenting a parameter.
	InjectAnnotation struct {
		properties map[string]string
	}
)

func (a TypeAnnotation) Named() (named string, found bool) {
	named, found = a.properties["named"]
	return named, found
}

func (a InjectAnnotation) Named() (named string, found bool) {
	named, found = a.properties["named"]
	return named, found
}

func (a InjectAnnotation) Default() (value string, found bool) {
	value, found = a.properties["default"]
	return value, found
}

func (a InjectAnnotation) String() string {
	if len(a.properties) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(a.properties))
	for _, key := range slices.Sorted(maps.Keys(a.properties)) {
		parts = append(parts, fmt.Sprintf("%s=%q", key, a.properties[key]))
	}
	return strings.Join(parts, " ")
}

// hasAnnotation reports whether one line of the doc starts with tag.
func hasAnnotation(docText, tag string) bool {
	for _, line := range strings.Split(docText, "\n") {
		if isTagLine(strings.TrimSpace(line), tag) {
			return true
		}
	}
	return false
}

func isTagLine(line, tag string) bool {
	if !strings.HasPrefix(line, tag) {
		return false
	}
	rest := line[len(tag):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func parseTypeAnnotation(logger *zerolog.Logger, docText string, tag string) TypeAnnotation {
	var (
		descriptionLines []string
		tagLine          string
	)
	for _, line := range strings.Split(docText, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case isTagLine(line, tag):
			tagLine = line
		case line != "" && !strings.HasPrefix(line, "@"):
			descriptionLines = append(descriptionLines, line)
		}
	}

	annotation := TypeAnnotation{
		description: strings.Join(descriptionLines, "\n"),
		properties:  parseProperties(tagLine, tag),
	}
	warnUnknown(logger, annotation.properties, knownComponentProperties)

	return annotation
}

func parseInjectAnnotation(logger *zerolog.Logger, comment string) InjectAnnotation {
	content := strings.TrimSpace(strings.TrimPrefix(comment, "//"))
	if !isTagLine(content, injectAnnotationTag) {
		return InjectAnnotation{properties: make(map[string]string)}
	}

	annotation := InjectAnnotation{properties: parseProperties(content, injectAnnotationTag)}
	warnUnknown(logger, annotation.properties, knownInjectProperties)

	return annotation
}

// parseProperties reads the key=value and key="value" pairs following tag.
func parseProperties(line string, tag string) map[string]string {
	properties := make(map[string]string)

	content := strings.TrimSpace(strings.TrimPrefix(line, tag))
	if content == "" {
		return properties
	}

	for _, match := range propertiesRegexp.FindAllStringSubmatch(content, -1) {
		value := match[2]
		if value == "" {
			value = match[3]
		}
		properties[match[1]] = value
	}

	return properties
}

func warnUnknown(logger *zerolog.Logger, properties map[string]string, known []string) {
	for key := range properties {
		if !slices.Contains(known, key) {
			logger.Warn().Str("property", key).Msg("Unknown annotation property, ignoring it")
		}
	}
}
