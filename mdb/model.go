package mdb

import (
	"time"

	"astrolink-client/protocol"
)

// 任务数据库条目是服务器下发的只读定义，访问器只做字段暴露不做改写。

// Parameter 参数定义
type Parameter struct {
	msg *protocol.ParameterInfoMsg
}

func newParameter(msg *protocol.ParameterInfoMsg) *Parameter {
	return &Parameter{msg: msg}
}

// Name 短名（不含空间系统路径）
func (p *Parameter) Name() string {
	return p.msg.Name
}

// QualifiedName 完全限定名（含空间系统路径）
func (p *Parameter) QualifiedName() string {
	return p.msg.QualifiedName
}

// Aliases 各命名空间下的别名
func (p *Parameter) Aliases() []protocol.NamedObjectId {
	return p.msg.Alias
}

// Description 简短描述
func (p *Parameter) Description() (string, bool) {
	if p.msg.ShortDescription == nil {
		return "", false
	}
	return *p.msg.ShortDescription, true
}

// LongDescription 详细描述
func (p *Parameter) LongDescription() (string, bool) {
	if p.msg.LongDescription == nil {
		return "", false
	}
	return *p.msg.LongDescription, true
}

// DataSource 参数来源（TELEMETERED / DERIVED / LOCAL 等）
func (p *Parameter) DataSource() (string, bool) {
	if p.msg.DataSource == nil {
		return "", false
	}
	return *p.msg.DataSource, true
}

// EngineeringType 工程值类型名（float / integer / enumeration 等）
func (p *Parameter) EngineeringType() (string, bool) {
	if p.msg.Type == nil || p.msg.Type.EngType == "" {
		return "", false
	}
	return p.msg.Type.EngType, true
}

// Units 工程单位
func (p *Parameter) Units() []string {
	if p.msg.Type == nil {
		return nil
	}
	units := make([]string, 0, len(p.msg.Type.UnitSet))
	for _, u := range p.msg.Type.UnitSet {
		units = append(units, u.Unit)
	}
	return units
}

func (p *Parameter) String() string {
	return p.msg.QualifiedName
}

// Container 容器定义（遥测包结构）
type Container struct {
	msg *protocol.ContainerInfoMsg
}

func newContainer(msg *protocol.ContainerInfoMsg) *Container {
	return &Container{msg: msg}
}

// Name 短名（不含空间系统路径）
func (c *Container) Name() string {
	return c.msg.Name
}

// QualifiedName 完全限定名（含空间系统路径）
func (c *Container) QualifiedName() string {
	return c.msg.QualifiedName
}

// Aliases 各命名空间下的别名
func (c *Container) Aliases() []protocol.NamedObjectId {
	return c.msg.Alias
}

// Description 简短描述
func (c *Container) Description() (string, bool) {
	if c.msg.ShortDescription == nil {
		return "", false
	}
	return *c.msg.ShortDescription, true
}

// MaxInterval 两次实例化之间的最大间隔
func (c *Container) MaxInterval() (time.Duration, bool) {
	if c.msg.MaxInterval == nil {
		return 0, false
	}
	return time.Duration(*c.msg.MaxInterval) * time.Millisecond, true
}

// BaseContainer 父容器的完全限定名
func (c *Container) BaseContainer() (string, bool) {
	if c.msg.BaseContainer == nil {
		return "", false
	}
	return *c.msg.BaseContainer, true
}

func (c *Container) String() string {
	return c.msg.QualifiedName
}
