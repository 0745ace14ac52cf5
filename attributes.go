// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package virtualtiff

import (
	"encoding/xml"
	"strings"
)

// extractAttributes collects the pass-through tags a manifest carries for
// downstream layers: georeferencing tags verbatim, descriptive strings, and
// GDAL's private metadata. No semantic interpretation happens here; a
// GeoKeyDirectory stays a raw SHORT array.
func extractAttributes(d *IFD) map[string]interface{} {
	attrs := make(map[string]interface{})

	if v, ok := d.Value(TagModelPixelScale); ok {
		attrs["model_pixel_scale"] = v.Floats()
	}
	if v, ok := d.Value(TagModelTiepoint); ok {
		attrs["model_tiepoint"] = v.Floats()
	}
	if v, ok := d.Value(TagModelTransformation); ok {
		attrs["model_transformation"] = v.Floats()
	}
	if v, ok := d.Value(TagGeoKeyDirectory); ok {
		attrs["geo_key_directory"] = v.Uints()
	}
	if v, ok := d.Value(TagGeoDoubleParams); ok {
		attrs["geo_double_params"] = v.Floats()
	}
	if v, ok := d.Value(TagGeoAsciiParams); ok {
		attrs["geo_ascii_params"] = v.Text()
	}

	if v, ok, err := d.uintTag(TagPhotometricInterpretation); err == nil && ok {
		attrs["photometric_interpretation"] = v
	}
	if v, ok, err := d.uintTag(TagResolutionUnit); err == nil && ok {
		attrs["resolution_unit"] = v
	}
	if v, ok := d.Value(TagXResolution); ok && v.Count() > 0 {
		attrs["x_resolution"] = v.Float(0)
	}
	if v, ok := d.Value(TagYResolution); ok && v.Count() > 0 {
		attrs["y_resolution"] = v.Float(0)
	}

	for tag, key := range map[TagID]string{
		TagImageDescription: "image_description",
		TagSoftware:         "software",
		TagDateTime:         "date_time",
	} {
		if v, ok := d.Value(tag); ok && v.Text() != "" {
			attrs[key] = v.Text()
		}
	}

	if v, ok := d.Value(TagGDALMetadata); ok && v.Text() != "" {
		for k, val := range parseGDALMetadata(v.Text()) {
			attrs[k] = val
		}
	}
	if v, ok := d.Value(TagGDALNoData); ok && v.Text() != "" {
		attrs["gdal_no_data"] = strings.TrimSpace(v.Text())
	}
	return attrs
}

// gdalMetadata is GDAL's tag 42112 payload: an XML document of named Items.
type gdalMetadata struct {
	Items []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:",chardata"`
	} `xml:"Item"`
}

// parseGDALMetadata flattens the GDAL metadata XML into key/value pairs.
// Malformed XML yields no attributes rather than failing the manifest; the
// tag is advisory.
func parseGDALMetadata(text string) map[string]string {
	var doc gdalMetadata
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil
	}
	out := make(map[string]string, len(doc.Items))
	for _, item := range doc.Items {
		if item.Name != "" {
			out[item.Name] = strings.TrimSpace(item.Value)
		}
	}
	return out
}
