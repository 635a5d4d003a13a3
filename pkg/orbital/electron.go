package orbital

import "github.com/samcharles93/orbital/pkg/memory"

// SetElectronNum sets the spin-up and spin-down electron counts.
func (c *Context) SetElectronNum(up, dn int64) error {
	const op = "set_electron_num"
	if err := c.usable(op); err != nil {
		return err
	}
	if up < 0 || dn < 0 || up+dn <= 0 {
		return invalidArg(op, "electron counts up=%d dn=%d", up, dn)
	}
	c.electron.upNum, c.electron.dnNum = up, dn
	c.electron.num.mark(memory.Host)
	c.stamp(GroupElectron)
	return nil
}

// GetElectronNum returns the spin-up and spin-down electron counts.
func (c *Context) GetElectronNum() (up, dn int64, err error) {
	const op = "get_electron_num"
	if err := c.usable(op); err != nil {
		return 0, 0, err
	}
	if !c.electron.num.set {
		return 0, 0, notReady(op, "electron counts not set")
	}
	return c.electron.upNum, c.electron.dnNum, nil
}
