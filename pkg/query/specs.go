package query

// Per-collection filter specs. Parameter names, comparisons and sort
// allow-lists mirror the survey's query interface: __gte/__lte suffixes
// bound numeric columns inclusively, bare parameters match exactly, and the
// spatial and date filters are opt-in per collection.

// Galaxies filters the galaxy catalog.
var Galaxies = &Spec{
	options: concat(
		[]option{
			exactInt("id", "id"),
			exactString("name", "name"),
			exactString("pgc", "pgc"),
			exactString("dm_method", "dm_method"),
			exactString("dm_ref", "dm_ref"),
		},
		floatRange("ra"),
		floatRange("dec"),
		floatRange("redshift"),
		floatRange("dm"),
		floatRange("dm_err"),
	),
	sortFields: map[string]string{
		"id":   "id",
		"name": "name",
		"pgc":  "pgc",
		"ra":   "ra",
		"dec":  "dec",
	},
	spatial: true,
}

// Subtractions filters difference images.
var Subtractions = &Spec{
	options: []option{
		exactInt("id", "id"),
		exactInt("galaxy_id", "galaxy_id"),
		exactInt("obs_id", "obs_id"),
		exactInt("ref_id", "ref_id"),
		exactString("version", "version"),
	},
	sortFields: map[string]string{
		"id":        "id",
		"galaxy_id": "galaxy_id",
		"mjdstart":  "mjdstart",
		"version":   "version",
	},
	dateColumn: "mjdstart",
}

// Candidates filters detections.
var Candidates = &Spec{
	options: concat(
		[]option{
			exactInt("id", "id"),
			exactInt("sub_id", "sub_id"),
			exactInt("galaxy_id", "galaxy_id"),
			exactInt("photflags", "photflags"),
			exactBool("ispos", "ispos"),
		},
		floatRange("ra"),
		floatRange("dec"),
		floatRange("xpos"),
		floatRange("ypos"),
		floatRange("snr"),
		floatRange("flux_aper"),
		floatRange("fluxerr_aper"),
		floatRange("mag_aper"),
		floatRange("magerr_aper"),
		floatRange("elongation"),
		floatRange("fwhm_image"),
		floatRange("class_star"),
		floatRange("scorr_peak"),
		floatRange("sciflux"),
		floatRange("diff2sciflux"),
		intRange("photflags"),
	),
	sortFields: map[string]string{
		"id":           "id",
		"ra":           "ra",
		"dec":          "dec",
		"snr":          "snr",
		"mag_aper":     "mag_aper",
		"class_star":   "class_star",
		"diff2sciflux": "diff2sciflux",
	},
	spatial: true,
}

// Sources filters the promoted source catalog.
var Sources = &Spec{
	options: concat(
		[]option{
			exactInt("id", "id"),
			exactInt("sub_id", "sub_id"),
			exactInt("cand_id", "cand_id"),
			exactInt("galaxy_id", "galaxy_id"),
			exactString("name", "name"),
			exactString("type", "type"),
			exactString("classification", "classification"),
			exactFloat("redshift", "redshift"),
		},
		floatRange("ra"),
		floatRange("dec"),
	),
	sortFields: map[string]string{
		"id":   "id",
		"name": "name",
		"ra":   "ra",
		"dec":  "dec",
		"type": "type",
	},
	spatial: true,
}

func concat(groups ...[]option) []option {
	var all []option
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}
