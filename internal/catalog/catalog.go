package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"shopmate-backend/pkg/logger"
)

//go:embed seed.json
var seedData []byte

// ErrPhoneNotFound 查询不到对应手机时返回
var ErrPhoneNotFound = errors.New("phone not found")

// Camera 摄像头规格
type Camera struct {
	Rear     string   `json:"rear"`
	Front    string   `json:"front"`
	Features []string `json:"features"`
}

// Phone 一条手机记录，字段与工具层返回给前端的结构保持一致
type Phone struct {
	ID              string  `json:"id"`
	Model           string  `json:"model"`
	Brand           string  `json:"brand"`
	Price           int     `json:"price"`
	Processor       string  `json:"processor"`
	RAM             int     `json:"ram"`
	Storage         int     `json:"storage"`
	Display         string  `json:"display"`
	RefreshRate     int     `json:"refresh_rate"`
	Battery         int     `json:"battery"`
	Charging        string  `json:"charging"`
	Camera          Camera  `json:"camera"`
	OS              string  `json:"os"`
	FiveG           bool    `json:"5g"`
	WaterResistance string  `json:"water_resistance"`
	Weight          int     `json:"weight"`
	Rating          float64 `json:"rating"`
	Image           string  `json:"image,omitempty"`
}

// Filter 搜索条件，零值字段表示不过滤
type Filter struct {
	Brand          string
	MaxPrice       int
	MinPrice       int
	MinRAM         int
	MinBattery     int
	MinRefreshRate int
}

// Catalog 内存手机目录，可选落盘路径用于数据导入
type Catalog struct {
	mu       sync.RWMutex
	phones   []Phone
	dataPath string
}

// Load 加载目录：优先读取 dataPath 指向的文件，不存在则回退内置种子数据
func Load(dataPath string) (*Catalog, error) {
	c := &Catalog{dataPath: dataPath}

	data := seedData
	if dataPath != "" {
		fileData, err := os.ReadFile(dataPath)
		if err == nil {
			data = fileData
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read catalog data: %w", err)
		}
	}

	if err := json.Unmarshal(data, &c.phones); err != nil {
		return nil, fmt.Errorf("failed to parse catalog data: %w", err)
	}

	logger.Infof("Catalog loaded with %d phones", len(c.phones))
	return c, nil
}

// All 返回全部手机的副本
func (c *Catalog) All() []Phone {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Phone, len(c.phones))
	copy(result, c.phones)
	return result
}

// Search 按条件过滤
func (c *Catalog) Search(f Filter) []Phone {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []Phone
	for _, p := range c.phones {
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MinRAM > 0 && p.RAM < f.MinRAM {
			continue
		}
		if f.MinBattery > 0 && p.Battery < f.MinBattery {
			continue
		}
		if f.MinRefreshRate > 0 && p.RefreshRate < f.MinRefreshRate {
			continue
		}
		result = append(result, p)
	}
	return result
}

// ByID 按 ID 精确查找
func (c *Catalog) ByID(id string) (*Phone, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.phones {
		if c.phones[i].ID == id {
			p := c.phones[i]
			return &p, nil
		}
	}
	return nil, ErrPhoneNotFound
}

// ByModel 按型号名模糊查找（大小写不敏感，子串匹配，也匹配 ID）
func (c *Catalog) ByModel(name string) (*Phone, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(name)
	for i := range c.phones {
		if strings.Contains(strings.ToLower(c.phones[i].Model), lower) ||
			strings.Contains(strings.ToLower(c.phones[i].ID), lower) {
			p := c.phones[i]
			return &p, nil
		}
	}
	return nil, ErrPhoneNotFound
}

// Resolve 先按 ID 查，查不到再按型号名模糊匹配
func (c *Catalog) Resolve(idOrModel string) (*Phone, error) {
	if p, err := c.ByID(idOrModel); err == nil {
		return p, nil
	}
	return c.ByModel(idOrModel)
}

// Upsert 插入或按 ID 覆盖一条记录
func (c *Catalog) Upsert(phone Phone) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.phones {
		if c.phones[i].ID == phone.ID {
			c.phones[i] = phone
			return
		}
	}
	c.phones = append(c.phones, phone)
}

// Save 将当前目录写回 dataPath，价格升序排列，写入走临时文件再改名
func (c *Catalog) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dataPath == "" {
		return errors.New("catalog has no data path configured")
	}

	sort.Slice(c.phones, func(i, j int) bool {
		return c.phones[i].Price < c.phones[j].Price
	})

	if err := os.MkdirAll(filepath.Dir(c.dataPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(c.phones, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tempPath := c.dataPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return os.Rename(tempPath, c.dataPath)
}

// Count 当前记录数
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.phones)
}
