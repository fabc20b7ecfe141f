/*
Package wm provides the window manager behind the Portfolio OS desktop.

The desktop hosts a fixed set of applications (About, Projects, Skills,
Contact, Terminal). Each has exactly one window whose open, minimized,
maximized and focused state plus stacking order is owned by a Manager:
  - Open brings a window up and to the front, focusing it
  - Close hides it entirely and resets its flags
  - Minimize hides it but keeps it listed on the taskbar
  - Restore un-hides a minimized window and focuses it
  - Maximize toggles full-canvas occupancy and focuses it
  - Focus raises a window and makes it active

Stacking uses an ever-increasing counter: every raise allocates a value
strictly greater than all earlier ones, so the most recently touched
visible window is always on top.

A Manager is created per desktop session and handed to whatever renders
the window frames and the taskbar. There is no package-level state.

Example usage:

	manager := wm.NewManager()
	manager.Open(wm.About)
	manager.Open(wm.Projects)
	manager.Minimize(wm.About)

	state := manager.Snapshot()
	for _, entry := range manager.Taskbar() {
		// render entry
	}
*/
package wm
