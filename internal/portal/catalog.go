package portal

import "github.com/pthm/hxsearch/elements"

// Sample records served by the demo portal.

var gwasCatalog = []elements.GWASSearchResult{
	{
		Identifier:    "KGK20170707.1",
		Genotypes:     "Cowpea iSelect Consortium Array",
		Synopsis:      "Pod length and seed weight in a cowpea MAGIC population",
		OrganismGenus: "Vigna",
		OrganismName:  "Vigna unguiculata",
	},
	{
		Identifier:    "Herniter_Munoz-Amatriain_2019",
		Genotypes:     "Cowpea iSelect Consortium Array",
		Synopsis:      "Seed coat pattern and color",
		OrganismGenus: "Vigna",
		OrganismName:  "Vigna unguiculata",
	},
	{
		Identifier:    "Zhou_Lu_2015",
		Genotypes:     "SoySNP50K",
		Synopsis:      "Domestication traits including pod shattering and plant height",
		OrganismGenus: "Glycine",
		OrganismName:  "Glycine max",
	},
	{
		Identifier:    "Fang_Ma_2017",
		Genotypes:     "SoySNP50K",
		Synopsis:      "Pod number per plant and seed oil content",
		OrganismGenus: "Glycine",
		OrganismName:  "Glycine max",
	},
	{
		Identifier:    "Zhang_Wang_2019",
		Genotypes:     "Axiom Arachis 58K SNP array",
		Synopsis:      "Pod weight and kernel traits in cultivated peanut",
		OrganismGenus: "Arachis",
		OrganismName:  "Arachis hypogaea",
	},
	{
		Identifier:    "Kamfwa_Cichy_2015",
		Genotypes:     "BARCBean6K_3",
		Synopsis:      "Days to flowering and maturity in Andean common bean",
		OrganismGenus: "Phaseolus",
		OrganismName:  "Phaseolus vulgaris",
	},
	{
		Identifier:    "Bhakta_Jones_2017",
		Genotypes:     "Axiom Arachis 58K SNP array",
		Synopsis:      "Leaf spot resistance",
		OrganismGenus: "Arachis",
		OrganismName:  "Arachis hypogaea",
	},
}

var geneCatalog = []elements.GeneSearchResult{
	{Genus: "Glycine", Species: "max", Identifier: "glyma.Wm82.gnm2.ann1.Glyma.12G221500", Name: "NAC1", Description: "NAC domain transcription factor"},
	{Genus: "Glycine", Species: "max", Identifier: "glyma.Wm82.gnm2.ann1.Glyma.16G141500", Name: "SHAT1-5", Description: "NAC transcription factor controlling pod shattering"},
	{Genus: "Phaseolus", Species: "vulgaris", Identifier: "phavu.G19833.gnm2.ann1.Phvul.003G252100", Name: "PvMYB26", Description: "MYB transcription factor associated with pod shattering"},
	{Genus: "Vigna", Species: "unguiculata", Identifier: "vigun.IT97K-499-35.gnm1.ann1.Vigun03g030200", Name: "VuNAC", Description: "NAC domain containing protein"},
	{Genus: "Arachis", Species: "hypogaea", Identifier: "arahy.Tifrunner.gnm1.ann1.K0SR6D", Name: "AhFAD2B", Description: "Fatty acid desaturase 2"},
	{Genus: "Medicago", Species: "truncatula", Identifier: "medtr.A17.gnm5.ann1_6.MtrunA17Chr1g0155921", Name: "MtNAC969", Description: "NAC transcription factor involved in nodule senescence"},
}

var mineCatalog = []elements.MineWebPropertiesResult{
	{Title: "LegumeMine", SubTitle: "Genomic data for legumes", ReleaseVersion: "5.1.0", SitePrefix: "https://mines.legumeinfo.org/legumemine"},
	{Title: "SoyMine", SubTitle: "Glycine max and Glycine soja", ReleaseVersion: "5.1.0", SitePrefix: "https://mines.legumeinfo.org/soymine"},
	{Title: "CowpeaMine", SubTitle: "Vigna unguiculata", ReleaseVersion: "5.0.2", SitePrefix: "https://mines.legumeinfo.org/cowpeamine"},
	{Title: "PeanutMine", SubTitle: "Arachis hypogaea and wild relatives", ReleaseVersion: "5.0.2", SitePrefix: "https://mines.legumeinfo.org/peanutmine"},
	{Title: "BeanMine", SubTitle: "Phaseolus vulgaris", ReleaseVersion: "5.0.1", SitePrefix: "https://mines.legumeinfo.org/beanmine"},
}
