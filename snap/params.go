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
	"fmt"
	"strconv"
	"strings"
)

// OlciSpectralBands lists the 21 OLCI bands, labeled the way the snow
// processor expects them in its spectralAlbedoTargetBands parameter.
var OlciSpectralBands = []string{
	"Oa01 (400 nm)", "Oa02 (412.5 nm)", "Oa03 (442.5 nm)", "Oa04 (490 nm)",
	"Oa05 (510 nm)", "Oa06 (560 nm)", "Oa07 (620 nm)", "Oa08 (665 nm)",
	"Oa09 (673.75 nm)", "Oa10 (681.25 nm)", "Oa11 (708.75 nm)", "Oa12 (753.75 nm)",
	"Oa13 (761.25 nm)", "Oa14 (764.375 nm)", "Oa15 (767.5 nm)", "Oa16 (778.75 nm)",
	"Oa17 (865 nm)", "Oa18 (885 nm)", "Oa19 (900 nm)", "Oa20 (940 nm)",
	"Oa21 (1020 nm)",
}

// Reader format names understood by the Read operator. The auto reader picks
// the right format for OLCI; SLSTR wants an explicit resolution choice.
const (
	ReaderAuto      = ""
	ReaderSlstr500m = "Sen3_SLSTRL1B_500m"
	ReaderSlstr1km  = "Sen3_SLSTRL1B_1km"
)

// SlstrReader maps the user-facing resolution choice, 500 or 1000, to the
// matching reader format
func SlstrReader(resolution string) (string, error) {
	switch resolution {
	case "", "500":
		return ReaderSlstr500m, nil
	case "1000":
		return ReaderSlstr1km, nil
	}
	return "", fmt.Errorf("SLSTR resolution must be 500 or 1000, got %s", resolution)
}

// demBand is the band the cloud-over-snow processor uses as its terrain model
const demBand = "band_1"

// DefaultRegionPad is the half-width in degrees of the box subset around a
// site. Wide enough to survive geocoding error at the swath edge, small
// enough that the processors run in seconds.
const DefaultRegionPad = 0.02

// SubsetRegion builds the WKT geoRegion for a box of half-width pad degrees
// around a coordinate. Latitudes are clamped at the poles.
func SubsetRegion(lat, lon, pad float64) string {
	if pad <= 0 {
		pad = DefaultRegionPad
	}
	latMin, latMax := lat-pad, lat+pad
	if latMin < -90 {
		latMin = -90
	}
	if latMax > 90 {
		latMax = 90
	}
	lonMin, lonMax := lon-pad, lon+pad
	return fmt.Sprintf("POLYGON ((%s %s, %s %s, %s %s, %s %s, %s %s))",
		wktFloat(lonMin), wktFloat(latMin),
		wktFloat(lonMax), wktFloat(latMin),
		wktFloat(lonMax), wktFloat(latMax),
		wktFloat(lonMin), wktFloat(latMax),
		wktFloat(lonMin), wktFloat(latMin))
}

func wktFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SnowAlbedoParams mirrors the options of the OLCI.SnowAlbedo operator
type SnowAlbedoParams struct {
	ConsiderNdsiMask      bool
	NdsiThreshold         float64
	ConsiderSnowPollution bool
	PollutionDelta        float64
	WritePollutionParams  bool
	ComputePPA            bool
	CopyReflectanceBands  bool
	ReferenceWavelength   float64
	ApplyGains            bool
}

// DefaultSnowAlbedoParams returns the processor options used operationally:
// no NDSI or pollution masking, reflectances copied, OLCI gains applied and
// the albedo referenced at 1020 nm.
func DefaultSnowAlbedoParams() SnowAlbedoParams {
	return SnowAlbedoParams{
		NdsiThreshold:        0.03,
		PollutionDelta:       0.1,
		CopyReflectanceBands: true,
		ReferenceWavelength:  1020.0,
		ApplyGains:           true,
	}
}

func (p SnowAlbedoParams) parameters() []graphParameter {
	gainB1, gainB5, gainB17, gainB21 := "1", "1", "1", "1"
	if p.ApplyGains {
		gainB1, gainB5, gainB17, gainB21 = "0.9798", "0.9892", "1", "0.914"
	}
	return []graphParameter{
		param("spectralAlbedoTargetBands", strings.Join(OlciSpectralBands, ",")),
		param("considerNdsiSnowMask", boolParam(p.ConsiderNdsiMask)),
		param("ndsiThresh", floatParam(p.NdsiThreshold)),
		param("considerSnowPollution", boolParam(p.ConsiderSnowPollution)),
		param("pollutionDelta", floatParam(p.PollutionDelta)),
		param("writeAdditionalSnowPollutionParms", boolParam(p.WritePollutionParams)),
		param("computePPA", boolParam(p.ComputePPA)),
		param("copyReflectanceBands", boolParam(p.CopyReflectanceBands)),
		param("refWvl", floatParam(p.ReferenceWavelength)),
		param("olciGainBand1", gainB1),
		param("olciGainBand5", gainB5),
		param("olciGainBand17", gainB17),
		param("olciGainBand21", gainB21),
	}
}

func boolParam(v bool) string {
	return strconv.FormatBool(v)
}

func floatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
