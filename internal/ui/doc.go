// Package ui implements the Bubble Tea interface: the recipe list, the detail
// view, the create and edit form, and the login screen.
//
// Every visited view gets a scope holding a cancellable context and the photo
// URLs it displays. Navigating away cancels the scope and releases those URLs,
// and results that arrive for an older scope are discarded.
package ui
