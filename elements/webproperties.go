package elements

import (
	"github.com/a-h/templ"
	"github.com/pthm/hxsearch"
)

// MineWebPropertiesData is empty: the listing takes no input.
type MineWebPropertiesData struct{}

// MineWebPropertiesResult describes one queried mine.
type MineWebPropertiesResult struct {
	Title          string `json:"title"`
	SubTitle       string `json:"subTitle"`
	ReleaseVersion string `json:"releaseVersion"`
	SitePrefix     string `json:"sitePrefix"`
}

// MineWebPropertiesFunc lists mine web properties. The query is always
// empty; page is honored like any other search.
type MineWebPropertiesFunc = hxsearch.SearchFunc[MineWebPropertiesData, MineWebPropertiesResult]

// MineWebProperties lists the web properties of the mines behind the
// portal. With no required parameters it loads on every page view.
type MineWebProperties struct{}

func (MineWebProperties) RequiredQueryStringParams() []string {
	return []string{}
}

func (MineWebProperties) ResultAttributes() []string {
	return []string{"title", "subTitle", "releaseVersion", "sitePrefix"}
}

func (MineWebProperties) TableHeader() map[string]string {
	return map[string]string{
		"title":          "Mine",
		"subTitle":       "Contents",
		"releaseVersion": "Release",
		"sitePrefix":     "URL",
	}
}

func (MineWebProperties) RenderForm(f hxsearch.FormContext) templ.Component {
	return searchForm(f, "Web Properties of the Queried Mines", "GO!")
}
