// Copyright 2019, Maxim Lamare.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snap

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// File names written into a scene's work directory. All raster outputs are
// NetCDF so they can be read back without SNAP.
const (
	GraphFileName  = "graph.xml"
	SubsetFileName = "subset.nc"
	SnowFileName   = "snow.nc"
	CloudFileName  = "idepix.nc"

	outputFormat = "NetCDF4-CF"
)

type graphXML struct {
	XMLName xml.Name    `xml:"graph"`
	ID      string      `xml:"id,attr"`
	Version string      `xml:"version"`
	Nodes   []graphNode `xml:"node"`
}

type graphNode struct {
	ID         string          `xml:"id,attr"`
	Operator   string          `xml:"operator"`
	Sources    graphSources    `xml:"sources"`
	Parameters graphParameters `xml:"parameters"`
}

type graphSources struct {
	SourceProduct []graphSourceProduct `xml:"sourceProduct"`
}

type graphSourceProduct struct {
	RefID string `xml:"refid,attr"`
}

type graphParameters struct {
	Entries []graphParameter
}

// graphParameter marshals as an element named after the operator parameter
type graphParameter struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func param(name, value string) graphParameter {
	return graphParameter{XMLName: xml.Name{Local: name}, Value: value}
}

func readNode(manifestPath, readerFormat string) graphNode {
	parameters := []graphParameter{param("file", manifestPath)}
	if readerFormat != ReaderAuto {
		parameters = append(parameters, param("formatName", readerFormat))
	}
	return graphNode{
		ID:         "read",
		Operator:   "Read",
		Parameters: graphParameters{Entries: parameters},
	}
}

func subsetNode(geoRegion string) graphNode {
	return graphNode{
		ID:       "subset",
		Operator: "Subset",
		Sources:  graphSources{SourceProduct: []graphSourceProduct{{RefID: "read"}}},
		Parameters: graphParameters{Entries: []graphParameter{
			param("geoRegion", geoRegion),
			param("subSamplingX", "1"),
			param("subSamplingY", "1"),
			param("copyMetadata", "true"),
		}},
	}
}

func writeNode(id, source, file string) graphNode {
	return graphNode{
		ID:       id,
		Operator: "Write",
		Sources:  graphSources{SourceProduct: []graphSourceProduct{{RefID: source}}},
		Parameters: graphParameters{Entries: []graphParameter{
			param("file", file),
			param("formatName", outputFormat),
		}},
	}
}

func marshalGraph(id string, nodes []graphNode) ([]byte, error) {
	doc, err := xml.MarshalIndent(graphXML{ID: id, Version: "1.0", Nodes: nodes}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("building graph %s: %v", id, err)
	}
	return append([]byte(xml.Header), doc...), nil
}

// SnowGraph builds the one-shot graph for the snow pipeline: a subset around
// the site feeds the snow processor, the cloud-over-snow flagging, and a
// plain write of the subset itself for the radiance reads.
func SnowGraph(manifestPath, geoRegion string, params SnowAlbedoParams, workDir string) ([]byte, error) {
	nodes := []graphNode{
		readNode(manifestPath, ReaderAuto),
		subsetNode(geoRegion),
		{
			ID:         "snow",
			Operator:   "OLCI.SnowAlbedo",
			Sources:    graphSources{SourceProduct: []graphSourceProduct{{RefID: "subset"}}},
			Parameters: graphParameters{Entries: params.parameters()},
		},
		{
			ID:       "cloud",
			Operator: "Idepix.Sentinel3.Olci.S3Snow",
			Sources:  graphSources{SourceProduct: []graphSourceProduct{{RefID: "subset"}}},
			Parameters: graphParameters{Entries: []graphParameter{
				param("demBandName", demBand),
			}},
		},
		writeNode("writeSubset", "subset", filepath.Join(workDir, SubsetFileName)),
		writeNode("writeSnow", "snow", filepath.Join(workDir, SnowFileName)),
		writeNode("writeCloud", "cloud", filepath.Join(workDir, CloudFileName)),
	}
	return marshalGraph("s3SnowExtraction", nodes)
}

// SubsetGraph builds the graph for the band pipeline: a subset around the
// site written straight back out as NetCDF
func SubsetGraph(manifestPath, readerFormat, geoRegion, workDir string) ([]byte, error) {
	nodes := []graphNode{
		readNode(manifestPath, readerFormat),
		subsetNode(geoRegion),
		writeNode("writeSubset", "subset", filepath.Join(workDir, SubsetFileName)),
	}
	return marshalGraph("s3BandExtraction", nodes)
}

// WriteGraph puts a graph document into workDir and returns its path
func WriteGraph(workDir string, doc []byte) (string, error) {
	path := filepath.Join(workDir, GraphFileName)
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return "", fmt.Errorf("writing graph file: %v", err)
	}
	return path, nil
}
