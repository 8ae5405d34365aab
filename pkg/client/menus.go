package client

import (
	"github.com/goliatone/go-crudui/pkg/menus"
)

// RegisterToolbarLeftMenus appends menus to the left of the toolbar.
func (c *Client) RegisterToolbarLeftMenus(list ...*menus.Menu) error {
	if err := c.menus.AddLeft(list...); err != nil {
		return err
	}
	c.overlayMenus(list)
	return nil
}

// RegisterToolbarRightMenus appends menus to the right of the toolbar.
func (c *Client) RegisterToolbarRightMenus(list ...*menus.Menu) error {
	if err := c.menus.AddRight(list...); err != nil {
		return err
	}
	c.overlayMenus(list)
	return nil
}

// RegisterAsideMenus registers the menus of the aside group code, shown by
// the aside-menu page.
func (c *Client) RegisterAsideMenus(code string, list ...*menus.Menu) error {
	if err := c.menus.AddAside(code, list...); err != nil {
		return err
	}
	c.overlayMenus(list)
	return nil
}

// overlayMenus applies the uischema menu overlays to list and its children.
// It runs after registration, as aside contexts depend on the group.
func (c *Client) overlayMenus(list []*menus.Menu) {
	if c.cfg.overlays == nil {
		return
	}
	var walk func([]*menus.Menu)
	walk = func(ms []*menus.Menu) {
		for _, m := range ms {
			c.cfg.overlays.ApplyMenu(m)
			walk(m.Children)
		}
	}
	walk(list)
}
