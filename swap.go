package hxsearch

// SwapMode is an HTMX hx-swap strategy.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

// SwapOuter replaces the entire element including its tag. Elements
// re-render themselves this way after every search.
const SwapOuter SwapMode = "outerHTML"
