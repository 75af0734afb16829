// Package state holds the application state container shared by the customer
// list and form views: a pure reducer plus a Store that serialises dispatches
// and notifies subscribers.
package state

import "github.com/crudio/crudio/internal/sales/customers"

// ActionType names a state transition.
type ActionType string

const (
	ActionFetchStart            ActionType = "FETCH_START"
	ActionFetchProductsSuccess  ActionType = "FETCH_PRODUCTS_SUCCESS"
	ActionFetchCustomersSuccess ActionType = "FETCH_CUSTOMERS_SUCCESS"
	ActionFetchError            ActionType = "FETCH_ERROR"
	ActionSetCurrentPage        ActionType = "SET_CURRENT_PAGE"
	ActionSetSearchText         ActionType = "SET_SEARCH_TEXT"
	ActionRefreshCustomers      ActionType = "REFRESH_CUSTOMERS"
)

// Action is a dispatched transition. Only the fields relevant to Type are set.
type Action struct {
	Type      ActionType
	Customers *customers.ListPage
	Products  []customers.Product
	Error     string
	Page      int
	Search    string
	Refresh   bool
}

// State is the application state. Values are treated as immutable: the
// reducer never writes through slices or pointers it received.
type State struct {
	Customers   *customers.ListPage
	Products    []customers.Product
	Loading     bool
	Error       string
	CurrentPage int
	SearchText  string
	RefreshFlag bool
}

// Initial returns the state at application start.
func Initial() State {
	return State{CurrentPage: 1}
}

func FetchStart() Action { return Action{Type: ActionFetchStart} }

func FetchProductsSuccess(products []customers.Product) Action {
	return Action{Type: ActionFetchProductsSuccess, Products: products}
}

func FetchCustomersSuccess(page *customers.ListPage) Action {
	return Action{Type: ActionFetchCustomersSuccess, Customers: page}
}

func FetchError(msg string) Action { return Action{Type: ActionFetchError, Error: msg} }

func SetCurrentPage(page int) Action { return Action{Type: ActionSetCurrentPage, Page: page} }

func SetSearchText(text string) Action { return Action{Type: ActionSetSearchText, Search: text} }

func RefreshCustomers(flag bool) Action { return Action{Type: ActionRefreshCustomers, Refresh: flag} }

// Reduce returns the state that follows s after a. Unknown actions return s.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionFetchStart:
		s.Loading = true
		s.Error = ""
	case ActionFetchProductsSuccess:
		s.Loading = false
		s.Products = a.Products
	case ActionFetchCustomersSuccess:
		s.Loading = false
		s.Customers = a.Customers
	case ActionFetchError:
		s.Loading = false
		s.Error = a.Error
	case ActionSetCurrentPage:
		s.CurrentPage = max(a.Page, 1)
	case ActionSetSearchText:
		s.SearchText = a.Search
		s.CurrentPage = 1
	case ActionRefreshCustomers:
		s.RefreshFlag = a.Refresh
	}
	return s
}
