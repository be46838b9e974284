package installer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/meza/fabric-installer/internal/fabric"
)

// DescriptorTimestamp is written to both releaseTime and time so that installs are reproducible.
const DescriptorTimestamp = "2023-05-13T15:58:54.493Z"

type Arguments struct {
	Game []string `json:"game"`
	JVM  []string `json:"jvm"`
}

// VersionDescriptor is the <id>.json file a launcher reads to start an installed version.
type VersionDescriptor struct {
	ID           string
	InheritsFrom string
	MainClass    string
	Libraries    []fabric.Library
	Arguments    Arguments
	ReleaseTime  string
	Time         string
}

type descriptorDocument struct {
	ID           string    `json:"id"`
	InheritsFrom string    `json:"inheritsFrom"`
	MainClass    string    `json:"mainClass"`
	Libraries    any       `json:"libraries"`
	Arguments    Arguments `json:"arguments"`
	ReleaseTime  string    `json:"releaseTime"`
	Time         string    `json:"time"`
}

func NewVersionDescriptor(resolution Resolution, mainClass string, libraries []fabric.Library) VersionDescriptor {
	return VersionDescriptor{
		ID:           resolution.ID,
		InheritsFrom: resolution.InheritsFrom,
		MainClass:    mainClass,
		Libraries:    libraries,
		Arguments:    Arguments{Game: []string{}, JVM: []string{}},
		ReleaseTime:  DescriptorTimestamp,
		Time:         DescriptorTimestamp,
	}
}

// Encode renders the descriptor as indented JSON with libraries in the requested format.
func (d VersionDescriptor) Encode(format LibrariesFormat) ([]byte, error) {
	libraries := d.Libraries
	if libraries == nil {
		libraries = []fabric.Library{}
	}

	document := descriptorDocument{
		ID:           d.ID,
		InheritsFrom: d.InheritsFrom,
		MainClass:    d.MainClass,
		Libraries:    libraries,
		Arguments:    d.Arguments,
		ReleaseTime:  d.ReleaseTime,
		Time:         d.Time,
	}
	if document.Arguments.Game == nil {
		document.Arguments.Game = []string{}
	}
	if document.Arguments.JVM == nil {
		document.Arguments.JVM = []string{}
	}

	switch format {
	case "", LibrariesArray:
	case LibrariesString:
		embedded, err := encodeJSON(libraries, "")
		if err != nil {
			return nil, err
		}
		document.Libraries = string(embedded)
	default:
		return nil, fmt.Errorf("unknown libraries format %q", format)
	}

	return encodeJSON(document, "  ")
}

func encodeJSON(value any, indent string) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}
