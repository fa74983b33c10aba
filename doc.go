// Package dirsearch is a Go client for a company directory search API.
//
// It covers the whole search experience of a directory front-end: building
// search requests from filter state, normalizing loosely shaped backend
// responses, a stateful search session and a debounced autosuggest dropdown.
//
// # One-shot searches
//
//	client, _ := dirsearch.New(dirsearch.WithBaseURL("http://localhost:8000"))
//	defer client.Close()
//
//	res, _ := client.Companies().
//	    Industry("Software").
//	    Location("Austin").
//	    FoundedSince("2015").
//	    SortBy(dirsearch.SortSize, dirsearch.Desc).
//	    Do(ctx)
//
// # Interactive sessions
//
// Session and Autosuggest hold the state a search page renders. Every user
// event maps to one method call; the returned snapshots are what to draw.
//
//	client.Autosuggest().OnInputChange("aus")
//	// ... 300ms later the dropdown fills in; Subscribe to be told.
//	client.Autosuggest().OnKeyDown(ctx, dirsearch.KeyArrowDown)
//	client.Autosuggest().OnKeyDown(ctx, dirsearch.KeyEnter)
//	state := client.Session().State()
package dirsearch
